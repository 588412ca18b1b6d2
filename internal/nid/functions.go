package nid

// Function is one curated entry in the known-functions table: a system
// export, the library that provides it, its category, the earliest
// firmware it exists on, and the risk/stub-mode pair a stubber should use
// if the function is missing on a target firmware.
type Function struct {
	Name    string
	Library string
	Cat     Category
	MinFW   string
	Risk    Risk
	Stub    StubMode
}

// knownFunctions is a representative, non-exhaustive subset of PS5 system
// exports spanning every category, risk level, and stub mode the
// classification rules distinguish, curated from the reference firmware
// knowledge base.
var knownFunctions = []Function{
	// libkernel — core kernel, memory, threading, filesystem.
	{"sceKernelLoadStartModule", "libkernel.sprx", CatKernel, "1.00", RiskCritical, StubSkip},
	{"sceKernelStopUnloadModule", "libkernel.sprx", CatKernel, "1.00", RiskCritical, StubSkip},
	{"sceKernelDlsym", "libkernel.sprx", CatKernel, "1.00", RiskCritical, StubSkip},
	{"sceKernelJitCreateSharedMemory", "libkernel.sprx", CatKernel, "1.00", RiskCritical, StubSkip},
	{"sceKernelMmap", "libkernel.sprx", CatMemory, "1.00", RiskCritical, StubSkip},
	{"sceKernelMunmap", "libkernel.sprx", CatMemory, "1.00", RiskCritical, StubSkip},
	{"sceKernelMapDirectMemory", "libkernel.sprx", CatMemory, "1.00", RiskCritical, StubSkip},
	{"sceKernelAllocateDirectMemory", "libkernel.sprx", CatMemory, "1.00", RiskCritical, StubSkip},
	{"sceKernelGetDirectMemorySize", "libkernel.sprx", CatMemory, "1.00", RiskLow, StubRetZero},
	{"sceKernelBatchMap2", "libkernel.sprx", CatMemory, "5.00", RiskHigh, StubSkip},
	{"scePthreadCreate", "libkernel.sprx", CatThread, "1.00", RiskCritical, StubSkip},
	{"scePthreadMutexLock", "libkernel.sprx", CatThread, "1.00", RiskCritical, StubSkip},
	{"scePthreadMutexDestroy", "libkernel.sprx", CatThread, "1.00", RiskLow, StubRetZero},
	{"scePthreadCondSignal", "libkernel.sprx", CatThread, "1.00", RiskHigh, StubSkip},
	{"sceKernelSleep", "libkernel.sprx", CatThread, "1.00", RiskSafe, StubRetZero},
	{"sceKernelUsleep", "libkernel.sprx", CatThread, "1.00", RiskSafe, StubRetZero},
	{"sceKernelClockGettime", "libkernel.sprx", CatSystem, "1.00", RiskLow, StubRetZero},
	{"sceKernelGetCpuTemperature", "libkernel.sprx", CatSystem, "1.00", RiskSafe, StubRetZero},
	{"sceKernelIsNeoMode", "libkernel.sprx", CatSystem, "1.00", RiskSafe, StubRetZero},
	{"sceKernelOpen", "libkernel.sprx", CatFS, "1.00", RiskCritical, StubSkip},
	{"sceKernelRead", "libkernel.sprx", CatFS, "1.00", RiskCritical, StubSkip},
	{"sceKernelWrite", "libkernel.sprx", CatFS, "1.00", RiskCritical, StubSkip},
	{"sceKernelMkdir", "libkernel.sprx", CatFS, "1.00", RiskHigh, StubRetZero},

	// libSceAgc — PS5-specific GPU command submission.
	{"sceAgcInitialize", "libSceAgc.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceAgcFinalize", "libSceAgc.sprx", CatGPU, "1.00", RiskLow, StubRetZero},
	{"sceAgcSubmitCommandBuffers", "libSceAgc.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceAgcGetLastError", "libSceAgc.sprx", CatGPU, "1.00", RiskSafe, StubRetZero},
	{"sceAgcDrawIndex", "libSceAgc.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceAgcDispatch", "libSceAgc.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceAgcSubmitAsc", "libSceAgc.sprx", CatGPU, "4.00", RiskCritical, StubSkip},
	{"sceAgcQueryPerformanceData", "libSceAgc.sprx", CatGPU, "4.00", RiskLow, StubRetZero},
	{"sceAgcSetPredication", "libSceAgc.sprx", CatGPU, "7.00", RiskCritical, StubSkip},
	{"sceAgcSetGraphicsShader", "libSceAgc.sprx", CatGPU, "9.00", RiskCritical, StubSkip},
	{"sceAgcSubmitCommandBuffersAndFlip2", "libSceAgc.sprx", CatGPU, "10.00", RiskCritical, StubSkip},

	// libSceAgcDriver / libSceGnmDriver.
	{"sceAgcDriverInitialize", "libSceAgcDriver.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceAgcDriverGetGpuClock", "libSceAgcDriver.sprx", CatGPU, "1.00", RiskSafe, StubRetZero},
	{"sceAgcDriverQueryCapabilities", "libSceAgcDriver.sprx", CatGPU, "7.00", RiskLow, StubRetZero},
	{"sceGnmSubmitCommandBuffers", "libSceGnmDriver.sprx", CatGPU, "1.00", RiskCritical, StubSkip},
	{"sceGnmSubmitDone", "libSceGnmDriver.sprx", CatGPU, "1.00", RiskCritical, StubSkip},

	// libSceVideoOut.
	{"sceVideoOutOpen", "libSceVideoOut.sprx", CatVideo, "1.00", RiskCritical, StubSkip},
	{"sceVideoOutClose", "libSceVideoOut.sprx", CatVideo, "1.00", RiskLow, StubRetZero},
	{"sceVideoOutRegisterBuffers", "libSceVideoOut.sprx", CatVideo, "1.00", RiskCritical, StubSkip},
	{"sceVideoOutSubmitFlip", "libSceVideoOut.sprx", CatVideo, "1.00", RiskCritical, StubSkip},
	{"sceVideoOutGetFlipStatus", "libSceVideoOut.sprx", CatVideo, "1.00", RiskLow, StubRetZero},
	{"sceVideoOutWaitVblank", "libSceVideoOut.sprx", CatVideo, "1.00", RiskSafe, StubRetZero},
	{"sceVideoOutConfigureOutputMode", "libSceVideoOut.sprx", CatVideo, "4.00", RiskMedium, StubRetZero},
	{"sceVideoOutSubmitEopFlip", "libSceVideoOut.sprx", CatVideo, "7.00", RiskCritical, StubSkip},
	{"sceVideoOutSubmitFlip2", "libSceVideoOut.sprx", CatVideo, "10.00", RiskCritical, StubSkip},

	// libSceAudioOut.
	{"sceAudioOutInit", "libSceAudioOut.sprx", CatAudio, "1.00", RiskHigh, StubRetZero},
	{"sceAudioOutOpen", "libSceAudioOut.sprx", CatAudio, "1.00", RiskHigh, StubSkip},
	{"sceAudioOutOutput", "libSceAudioOut.sprx", CatAudio, "1.00", RiskMedium, StubRetZero},
	{"sceAudioOutSetVolume", "libSceAudioOut.sprx", CatAudio, "1.00", RiskSafe, StubRetZero},

	// libSceNpAuth / libSceNpTrophy / libSceNpManager / libSceNpWebApi /
	// libSceNpCommerce / libSceNpSignaling / libSceNpMatching2.
	{"sceNpAuthCreateAsyncRequest", "libSceNpAuth.sprx", CatNP, "1.00", RiskLow, StubRetZero},
	{"sceNpAuthGetAuthorizationCode", "libSceNpAuth.sprx", CatNP, "1.00", RiskLow, StubRetError},
	{"sceNpAuthCreateAsyncRequestWithServiceLabel", "libSceNpAuth.sprx", CatNP, "4.00", RiskLow, StubRetZero},
	{"sceNpAuthGetAuthorizationCodeAsync", "libSceNpAuth.sprx", CatNP, "7.00", RiskLow, StubRetError},
	{"sceNpAuthCreateOauthRequest", "libSceNpAuth.sprx", CatNP, "8.00", RiskLow, StubRetError},
	{"sceNpTrophyUnlockTrophy", "libSceNpTrophy.sprx", CatTrophy, "1.00", RiskSafe, StubRetZero},
	{"sceNpTrophyGetTrophyInfo", "libSceNpTrophy.sprx", CatTrophy, "1.00", RiskSafe, StubRetZero},
	{"sceNpTrophyCaptureScreenshot", "libSceNpTrophy.sprx", CatTrophy, "3.00", RiskSafe, StubRetZero},
	{"sceNpCheckCallback", "libSceNpManager.sprx", CatNP, "1.00", RiskSafe, StubRetZero},
	{"sceNpGetNpId", "libSceNpManager.sprx", CatNP, "1.00", RiskLow, StubRetZero},
	{"sceNpWebApiCreateContext", "libSceNpWebApi.sprx", CatNP, "1.00", RiskLow, StubRetError},
	{"sceNpWebApiCreatePushEventFilter", "libSceNpWebApi.sprx", CatNP, "4.00", RiskLow, StubRetError},
	{"sceNpWebApiCreateMultipartRequest", "libSceNpWebApi.sprx", CatNP, "10.00", RiskLow, StubRetError},
	{"sceNpCommerceDialogOpen", "libSceNpCommerce.sprx", CatNP, "1.00", RiskSafe, StubRetZero},
	{"sceNpSignalingInitialize", "libSceNpSignaling.sprx", CatNP, "1.00", RiskLow, StubRetZero},
	{"sceNpMatching2CreateContext", "libSceNpMatching2.sprx", CatNP, "1.00", RiskLow, StubRetError},

	// libSceSaveData.
	{"sceSaveDataInitialize3", "libSceSaveData.sprx", CatSaveData, "1.00", RiskMedium, StubRetZero},
	{"sceSaveDataMount", "libSceSaveData.sprx", CatSaveData, "1.00", RiskMedium, StubRetError},
	{"sceSaveDataDelete", "libSceSaveData.sprx", CatSaveData, "1.00", RiskMedium, StubRetZero},
	{"sceSaveDataSyncSaveDataMemory", "libSceSaveData.sprx", CatSaveData, "2.00", RiskMedium, StubRetZero},
	{"sceSaveDataCheckBackupData", "libSceSaveData.sprx", CatSaveData, "3.00", RiskLow, StubRetError},
	{"sceSaveDataTransferringMount", "libSceSaveData.sprx", CatSaveData, "4.00", RiskMedium, StubRetError},
	{"sceSaveDataMount5", "libSceSaveData.sprx", CatSaveData, "5.00", RiskMedium, StubRetError},
	{"sceSaveDataMount6", "libSceSaveData.sprx", CatSaveData, "9.00", RiskMedium, StubRetError},

	// libScePad.
	{"scePadInit", "libScePad.sprx", CatPad, "1.00", RiskHigh, StubRetZero},
	{"scePadOpen", "libScePad.sprx", CatPad, "1.00", RiskHigh, StubSkip},
	{"scePadRead", "libScePad.sprx", CatPad, "1.00", RiskCritical, StubSkip},
	{"scePadReadState", "libScePad.sprx", CatPad, "1.00", RiskCritical, StubSkip},
	{"scePadSetVibration", "libScePad.sprx", CatPad, "1.00", RiskSafe, StubRetZero},
	{"scePadSetLightBar", "libScePad.sprx", CatPad, "1.00", RiskSafe, StubRetZero},
	{"scePadGetConnectionCount", "libScePad.sprx", CatPad, "4.00", RiskSafe, StubRetZero},
	{"scePadGetCapability", "libScePad.sprx", CatPad, "5.00", RiskSafe, StubRetZero},
	{"scePadSetForceIntercedeMode", "libScePad.sprx", CatPad, "7.00", RiskSafe, StubRetZero},

	// libSceUserService / libSceSystemService.
	{"sceUserServiceInitialize", "libSceUserService.sprx", CatSystem, "1.00", RiskHigh, StubRetZero},
	{"sceUserServiceGetInitialUser", "libSceUserService.sprx", CatSystem, "1.00", RiskLow, StubRetZero},
	{"sceSystemServiceLoadExec", "libSceSystemService.sprx", CatSystem, "1.00", RiskCritical, StubSkip},
	{"sceSystemServiceParamGetInt", "libSceSystemService.sprx", CatSystem, "1.00", RiskLow, StubRetZero},
	{"sceSystemServiceReceiveEvent", "libSceSystemService.sprx", CatSystem, "1.00", RiskMedium, StubRetZero},

	// libSceNet / libSceHttp / libSceSsl.
	{"sceNetInit", "libSceNet.sprx", CatNetwork, "1.00", RiskMedium, StubRetZero},
	{"sceNetSocket", "libSceNet.sprx", CatNetwork, "1.00", RiskHigh, StubRetError},
	{"sceNetConnect", "libSceNet.sprx", CatNetwork, "1.00", RiskHigh, StubRetError},
	{"sceHttpInit", "libSceHttp.sprx", CatHTTP, "1.00", RiskMedium, StubRetZero},
	{"sceHttpCreateRequestWithURL", "libSceHttp.sprx", CatHTTP, "1.00", RiskMedium, StubRetError},
	{"sceHttpSendRequest", "libSceHttp.sprx", CatHTTP, "1.00", RiskMedium, StubRetError},
	{"sceSslInit", "libSceSsl.sprx", CatSSL, "1.00", RiskMedium, StubRetZero},

	// libSceFiber.
	{"sceFiberInitialize", "libSceFiber.sprx", CatFiber, "1.00", RiskHigh, StubRetZero},
	{"sceFiberRun", "libSceFiber.sprx", CatFiber, "1.00", RiskCritical, StubSkip},
	{"sceFiberSwitch", "libSceFiber.sprx", CatFiber, "1.00", RiskCritical, StubSkip},
	{"sceFiberReturnToThread", "libSceFiber.sprx", CatFiber, "1.00", RiskCritical, StubSkip},

	// libSceIme / libSceMsgDialog / libSceCommonDialog.
	{"sceImeOpen", "libSceIme.sprx", CatIME, "1.00", RiskLow, StubRetZero},
	{"sceImeDialogInit", "libSceIme.sprx", CatDialog, "1.00", RiskLow, StubRetZero},
	{"sceMsgDialogOpen", "libSceMsgDialog.sprx", CatDialog, "1.00", RiskLow, StubRetZero},
	{"sceMsgDialogUpdateStatus", "libSceMsgDialog.sprx", CatDialog, "1.00", RiskSafe, StubRetZero},
	{"sceCommonDialogInitialize", "libSceCommonDialog.sprx", CatDialog, "1.00", RiskLow, StubRetZero},

	// libSceAppContent / libSceRtc / libScePlayGo / libSceScreenShot.
	{"sceAppContentInitialize", "libSceAppContent.sprx", CatSystem, "1.00", RiskMedium, StubRetZero},
	{"sceAppContentAddcontMount", "libSceAppContent.sprx", CatSystem, "1.00", RiskMedium, StubRetError},
	{"sceRtcGetCurrentTick", "libSceRtc.sprx", CatSystem, "1.00", RiskLow, StubRetZero},
	{"scePlayGoInitialize", "libScePlayGo.sprx", CatSystem, "1.00", RiskMedium, StubRetZero},
	{"sceScreenShotSetParam", "libSceScreenShot.sprx", CatSystem, "1.00", RiskSafe, StubRetZero},
}

// prefixRule is one entry of the first-match-wins prefix heuristic table.
type prefixRule struct {
	Prefix string
	Cat    Category
	Risk   Risk
	Stub   StubMode
}

var prefixHeuristics = []prefixRule{
	// CRITICAL — never stub.
	{"sceKernelLoad", CatKernel, RiskCritical, StubSkip},
	{"sceKernelDlsym", CatKernel, RiskCritical, StubSkip},
	{"sceKernelJit", CatKernel, RiskCritical, StubSkip},
	{"sceKernelMmap", CatMemory, RiskCritical, StubSkip},
	{"sceKernelMapDirect", CatMemory, RiskCritical, StubSkip},
	{"sceKernelAllocate", CatMemory, RiskCritical, StubSkip},
	{"sceAgcSubmit", CatGPU, RiskCritical, StubSkip},
	{"sceAgcDraw", CatGPU, RiskCritical, StubSkip},
	{"sceAgcDispatch", CatGPU, RiskCritical, StubSkip},
	{"sceAgcSet", CatGPU, RiskCritical, StubSkip},
	{"sceAgcDingDong", CatGPU, RiskCritical, StubSkip},
	{"sceGnmSubmit", CatGPU, RiskCritical, StubSkip},
	{"sceFiberRun", CatFiber, RiskCritical, StubSkip},
	{"sceFiberSwitch", CatFiber, RiskCritical, StubSkip},
	{"scePadRead", CatPad, RiskCritical, StubSkip},
	{"sceVideoOutRegister", CatVideo, RiskCritical, StubSkip},
	{"sceVideoOutSubmit", CatVideo, RiskCritical, StubSkip},
	{"sceVideoOutOpen", CatVideo, RiskCritical, StubSkip},
	{"sceKernelOpen", CatFS, RiskCritical, StubSkip},
	{"sceKernelRead", CatFS, RiskCritical, StubSkip},
	{"sceKernelWrite", CatFS, RiskCritical, StubSkip},
	{"sceKernelCreate", CatKernel, RiskHigh, StubSkip},
	{"scePthreadCreate", CatThread, RiskCritical, StubSkip},
	{"scePthreadMutex", CatThread, RiskHigh, StubSkip},
	{"scePthreadCond", CatThread, RiskHigh, StubSkip},

	// SAFE — stub freely.
	{"sceNpTrophy", CatTrophy, RiskSafe, StubRetZero},
	{"sceScreenShot", CatSystem, RiskSafe, StubRetZero},
	{"sceNpCommerce", CatNP, RiskSafe, StubRetZero},
	{"sceMsgDialog", CatDialog, RiskSafe, StubRetZero},
	{"sceImeDialog", CatDialog, RiskSafe, StubRetZero},

	// LOW risk.
	{"sceNpAuth", CatNP, RiskLow, StubRetZero},
	{"sceNpManager", CatNP, RiskLow, StubRetZero},
	{"sceNpWebApi", CatNP, RiskLow, StubRetError},
	{"sceNpMatching", CatNP, RiskLow, StubRetZero},
	{"sceNpSignaling", CatNP, RiskLow, StubRetZero},
	{"sceNp", CatNP, RiskLow, StubRetZero},
	{"sceUserService", CatSystem, RiskLow, StubRetZero},
	{"sceRtc", CatSystem, RiskLow, StubRetZero},
	{"scePlayGo", CatSystem, RiskLow, StubRetZero},
	{"sceCommonDialog", CatDialog, RiskLow, StubRetZero},

	// MEDIUM risk.
	{"sceSaveData", CatSaveData, RiskMedium, StubRetError},
	{"sceHttp", CatHTTP, RiskMedium, StubRetError},
	{"sceSsl", CatSSL, RiskMedium, StubRetZero},
	{"sceNet", CatNetwork, RiskMedium, StubRetError},
	{"scePad", CatPad, RiskMedium, StubRetZero},
	{"sceAudioOut", CatAudio, RiskMedium, StubRetZero},
	{"sceAppContent", CatSystem, RiskMedium, StubRetZero},

	// HIGH risk / broad fallbacks.
	{"sceAgcDriver", CatGPU, RiskHigh, StubSkip},
	{"sceAgc", CatGPU, RiskHigh, StubSkip},
	{"sceGnm", CatGPU, RiskHigh, StubSkip},
	{"sceVideoOut", CatVideo, RiskHigh, StubRetZero},
	{"sceFiber", CatFiber, RiskHigh, StubSkip},
	{"sceSystemService", CatSystem, RiskMedium, StubRetZero},
	{"sceIme", CatIME, RiskLow, StubRetZero},
	{"sceKernel", CatKernel, RiskHigh, StubSkip},
}

// suffixRule is one entry of the suffix heuristic table, checked only
// when no prefix matched.
type suffixRule struct {
	Suffix string
	Risk   Risk
	Stub   StubMode
}

var suffixHeuristics = []suffixRule{
	{"Initialize", RiskLow, StubRetZero},
	{"Init", RiskLow, StubRetZero},
	{"Terminate", RiskLow, StubRetZero},
	{"Term", RiskLow, StubRetZero},
	{"Finalize", RiskLow, StubRetZero},
	{"Destroy", RiskLow, StubRetZero},
	{"Delete", RiskLow, StubRetZero},
	{"Free", RiskLow, StubNop},
	{"Close", RiskLow, StubRetZero},
	{"GetStatus", RiskLow, StubRetZero},
	{"GetResult", RiskLow, StubRetZero},
	{"GetInfo", RiskLow, StubRetZero},
	{"GetState", RiskLow, StubRetZero},
	{"GetParam", RiskLow, StubRetZero},
	{"SetParam", RiskLow, StubRetZero},
	{"Poll", RiskSafe, StubRetZero},
	{"Wait", RiskSafe, StubRetZero},
	{"UpdateStatus", RiskSafe, StubRetZero},
	{"SetVibration", RiskSafe, StubRetZero},
	{"SetLightBar", RiskSafe, StubRetZero},
	{"ResetLightBar", RiskSafe, StubRetZero},
	{"Disable", RiskSafe, StubRetZero},
	{"Enable", RiskSafe, StubRetZero},
}

// LibraryInfo describes a known system library.
type LibraryInfo struct {
	Category  Category
	Essential bool
	Desc      string
}

var knownLibraries = map[string]LibraryInfo{
	"libkernel.sprx":                         {CatKernel, true, "PS5 Kernel"},
	"libSceAgc.sprx":                         {CatGPU, true, "AMD GPU Commands"},
	"libSceAgcDriver.sprx":                   {CatGPU, true, "AGC Driver Interface"},
	"libSceGnmDriver.sprx":                   {CatGPU, true, "GNM GPU Driver (PS4 compat)"},
	"libSceVideoOut.sprx":                    {CatVideo, true, "Video Output"},
	"libSceAudioOut.sprx":                    {CatAudio, false, "Audio Output"},
	"libScePad.sprx":                         {CatPad, true, "Controller Input"},
	"libSceUserService.sprx":                 {CatSystem, true, "User Service"},
	"libSceSystemService.sprx":               {CatSystem, true, "System Service"},
	"libSceNpAuth.sprx":                      {CatNP, false, "NP Authentication"},
	"libSceNpTrophy.sprx":                    {CatTrophy, false, "Trophy System"},
	"libSceSaveData.sprx":                    {CatSaveData, false, "Save Data"},
	"libSceSaveData.native.sprx":             {CatSaveData, false, "Save Data (Native)"},
	"libSceNet.sprx":                         {CatNetwork, false, "Network"},
	"libSceHttp.sprx":                        {CatHTTP, false, "HTTP Client"},
	"libSceSsl.sprx":                         {CatSSL, false, "SSL/TLS"},
	"libSceFiber.sprx":                       {CatFiber, false, "Fiber (Coroutine)"},
	"libSceIme.sprx":                         {CatIME, false, "Input Method"},
	"libSceMsgDialog.sprx":                   {CatDialog, false, "Message Dialog"},
	"libSceCommonDialog.sprx":                {CatDialog, false, "Common Dialog"},
	"libSceNpManager.sprx":                   {CatNP, false, "NP Manager"},
	"libSceNpWebApi.sprx":                    {CatNP, false, "NP Web API"},
	"libSceNpCommerce.sprx":                  {CatNP, false, "NP Commerce"},
	"libSceNpSignaling.sprx":                 {CatNP, false, "NP Signaling"},
	"libSceNpMatching2.sprx":                 {CatNP, false, "NP Matchmaking"},
	"libSceAppContent.sprx":                  {CatSystem, false, "App Content / DLC"},
	"libSceRtc.sprx":                         {CatSystem, false, "Real-Time Clock"},
	"libScePlayGo.sprx":                      {CatSystem, false, "PlayGo Streaming"},
	"libSceScreenShot.sprx":                  {CatSystem, false, "Screenshot"},
	"libSceNpAuthAuthorizedAppDialog.sprx":   {CatNP, false, "NP Auth Dialog"},
	"libSceJson.sprx":                        {CatMisc, false, "JSON Parser"},
	"libSceJson2.sprx":                       {CatMisc, false, "JSON Parser v2"},
	"libSceLibcInternal.sprx":                {CatSystem, true, "Internal libc"},
	"libScePosix.sprx":                       {CatSystem, true, "POSIX Layer"},
}

// needsFakelibLibraries are libraries that, when referenced by a binary
// targeting an older firmware, require a fakelib substitute rather than
// per-symbol stubbing — their ABI moves too fast across firmware to stub
// function-by-function.
var needsFakelibLibraries = map[string]bool{
	"libSceAgc":       true,
	"libSceAgcDriver": true,
	"libSceGnmDriver": true,
	"libSceFiber":     true,
}

// systemProvidedLibraries ship with every retail firmware and are never
// candidates for stubbing or fakelib substitution — missing symbols in
// them point at a genuine firmware-version mismatch, not an optional
// dependency.
var systemProvidedLibraries = map[string]bool{
	"libkernel.sprx": true, "libSceLibcInternal.sprx": true, "libScePosix.sprx": true,
	"libSceUserService.sprx": true, "libSceSystemService.sprx": true,
	"libSceVideoOut.sprx": true, "libScePad.sprx": true,
	"libSceSysmodule.sprx": true, "libSceSysUtil.sprx": true,
	"libSceAudioOut.sprx": true, "libSceAudioIn.sprx": true,
	"libSceRtc.sprx": true, "libSceJson.sprx": true, "libSceJson2.sprx": true,
	"libSceNet.sprx": true, "libSceNetCtl.sprx": true, "libSceHttp.sprx": true,
	"libSceSsl.sprx": true, "libSceIme.sprx": true, "libSceImeDialog.sprx": true,
	"libSceCommonDialog.sprx": true, "libSceMsgDialog.sprx": true,
	"libSceAppContent.sprx": true, "libScePlayGo.sprx": true, "libSceScreenShot.sprx": true,
	"libSceSaveData.sprx": true, "libSceSaveDataDialog.sprx": true,
	"libSceNpManager.sprx": true, "libSceNpAuth.sprx": true, "libSceNpTrophy.sprx": true,
	"libSceNpWebApi.sprx": true, "libSceNpCommerce.sprx": true,
	"libSceNpSignaling.sprx": true, "libSceNpMatching2.sprx": true,
}
