package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/portal-edge/pkg/routeaccess"
)

var (
	allowFmt    = color.New(color.FgGreen, color.Bold).SprintFunc()
	redirectFmt = color.New(color.FgYellow, color.Bold).SprintFunc()
	dimFmt      = color.New(color.Faint).SprintFunc()
)

func newDecideCmd() *cobra.Command {
	var rc routeaccess.RequestContext

	cmd := &cobra.Command{
		Use:   "decide <path>",
		Short: "Evaluate the route policy for a request",
		Example: `  portal-edge decide /workspace
  portal-edge decide /admin --user 42 --member
  portal-edge decide /onboarding --user 42 --admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc.Pathname = args[0]
			decision := routeaccess.Evaluate(rc)

			out := cmd.OutOrStdout()
			if decision.Allowed() {
				fmt.Fprintf(out, "%s %s\n", allowFmt("ALLOW"), rc.Pathname)
			} else {
				fmt.Fprintf(out, "%s %s -> %s\n", redirectFmt("REDIRECT"), rc.Pathname, decision.Destination())
			}
			fmt.Fprintln(out, dimFmt(describeContext(rc)))
			return nil
		},
	}

	cmd.Flags().StringVar(&rc.UserID, "user", "", "Authenticated user id (empty = anonymous)")
	cmd.Flags().BoolVar(&rc.HasOrganizationMembership, "member", false, "User belongs to an organization")
	cmd.Flags().BoolVar(&rc.IsPlatformAdmin, "admin", false, "User is a platform admin")
	return cmd
}

func describeContext(rc routeaccess.RequestContext) string {
	user := rc.UserID
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("user=%s member=%t platform_admin=%t", user, rc.HasOrganizationMembership, rc.IsPlatformAdmin)
}
