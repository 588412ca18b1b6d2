package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zboralski/ps5kitchen/internal/nid"
)

func newNidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nid",
		Short: "Inspect the firmware knowledge base's NID resolution and classification",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <nid-hex>",
		Short: "Resolve a 16-hex-char NID to a known function name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := nid.NewDB()
			name, ok := db.ResolveNID(args[0])
			if !ok {
				fmt.Printf("%s: not found in knowledge base\n", args[0])
				return nil
			}
			fmt.Printf("%s -> %s\n", args[0], name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "classify <function-name>",
		Short: "Classify a function name by the category/risk/stub-mode fallback chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := nid.NewDB()
			cls := db.ClassifyFunction(args[0])
			fmt.Printf("%s: category=%s risk=%s stub=%s source=%s min-fw=%s\n",
				args[0], cls.Category, cls.Risk, cls.Stub, cls.Source, cls.MinFW)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <function-name> <target-fw>",
		Short: "Check whether a function is available on a target firmware",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := nid.NewDB()
			ok := db.IsFunctionAvailable(args[0], args[1])
			fmt.Printf("%s available on %s: %v\n", args[0], args[1], ok)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "missing <target-fw>",
		Short: "List known functions unavailable on a target firmware",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := nid.NewDB()
			missing := db.GetMissingForFW(db.GetAllKnownNames(), args[0])
			if len(missing) == 0 {
				fmt.Printf("no known functions missing on %s\n", args[0])
				return nil
			}
			for _, m := range missing {
				fmt.Printf("%s: requires %s, risk=%s stub=%s category=%s library=%s\n",
					m.Name, m.MinFW, m.Risk, m.Stub, m.Category, m.Library)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics about the built-in knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := nid.NewDB()
			s := db.GetStats()
			fmt.Printf("known functions: %d\n", s.TotalFunctions)
			fmt.Printf("known libraries: %d\n", s.TotalLibraries)
			fmt.Printf("by risk: %v\n", s.ByRisk)
			fmt.Printf("by category: %v\n", s.ByCategory)
			return nil
		},
	})

	return cmd
}
