package main

import (
	"fmt"
	"os"

	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/selfcontainer"
)

func inspectBinary(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if selfcontainer.IsSelf(data) {
		fmt.Printf("%s: signed SELF container\n", path)
		if _, found := selfcontainer.FindEmbeddedELF(data); found {
			fmt.Println("  embedded plain-ELF magic found")
		} else {
			fmt.Println("  no embedded plain-ELF magic found")
		}
		return nil
	}

	f, err := elfraw.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Printf("%s: %s ELF, entry 0x%x, %d program headers\n", path, f.Machine, f.Entry, f.PHNum)
	for _, seg := range f.Segments {
		fmt.Printf("  segment type=0x%x flags=%03b offset=0x%x vaddr=0x%x filesz=0x%x\n",
			seg.Type, seg.Flags, seg.FileOffset, seg.VAddr, seg.FileSize)
	}
	if f.Param != nil && f.Param.Valid() {
		fmt.Printf("  param segment: magic=0x%x\n", f.Param.Magic)
	}

	syms, err := f.ImportedSymbols()
	if err != nil {
		return err
	}
	fmt.Printf("  %d imported symbols\n", len(syms))
	return nil
}
