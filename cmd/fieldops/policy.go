package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/spf13/cobra"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the role policy",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var policyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a policy file and print the role matrix",
	Long: "Validate a policy file and print the role matrix.\n" +
		"Without --file the policy.file of --config is checked, or the built-in policy if none is set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString("file")
		if err != nil {
			return fmt.Errorf("read flag `file`: %w", err)
		}
		if path == "" && configPath != "" {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path = cfg.Policy.File
		}

		catalog, err := access.LoadCatalog(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tLABEL\tPROJECTS\tPERMISSIONS")
		for _, def := range catalog.AllRoles() {
			perms := catalog.PermissionsOf(def.Role)
			names := make([]string, 0, len(perms))
			for _, p := range perms {
				names = append(names, string(p))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d: %s\n",
				def.Role, def.Label, catalog.AccessType(def.Role), len(perms), strings.Join(names, ","))
		}
		return w.Flush()
	},
}

func init() {
	policyCheckCmd.Flags().StringP("file", "f", "", "Policy file to validate")
	policyCmd.AddCommand(policyCheckCmd)
	rootCmd.AddCommand(policyCmd)
}
