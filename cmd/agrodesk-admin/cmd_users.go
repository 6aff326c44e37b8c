package main

import (
	"fmt"
	"text/tabwriter"

	"agrodesk/adapters/postgres"
	"agrodesk/app"
	"agrodesk/models"

	"github.com/spf13/cobra"
)

var (
	userName     string
	userEmail    string
	userRole     string
	promoteEmail string
	promoteRole  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users and manage roles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with their roles",
	RunE:  withUsers(runUsersList),
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	RunE:  withUsers(runUsersAdd),
}

var usersPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change the role of an existing user",
	Long: `Change the role of an existing user, found by email.

Example:
  agrodesk-admin users promote --email ana@example.com --role super-admin`,
	RunE: withUsers(runUsersPromote),
}

func init() {
	usersAddCmd.Flags().StringVar(&userName, "name", "", "display name")
	usersAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	usersAddCmd.Flags().StringVar(&userRole, "role", string(models.RoleUser), "user, admin or super-admin")
	_ = usersAddCmd.MarkFlagRequired("email")

	usersPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email address")
	usersPromoteCmd.Flags().StringVar(&promoteRole, "role", string(models.RoleSuperAdmin), "user, admin or super-admin")
	_ = usersPromoteCmd.MarkFlagRequired("email")

	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersPromoteCmd)
	rootCmd.AddCommand(usersCmd)
}

// withUsers opens the database and hands the command a user service
func withUsers(run func(*cobra.Command, *app.UserService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return run(cmd, app.NewUserService(postgres.NewUserRepository(db), logger))
	}
}

func runUsersList(cmd *cobra.Command, users *app.UserService) error {
	list, err := users.List(cmd.Context())
	if err != nil {
		return err
	}
	printUsers(cmd, list)
	return nil
}

func printUsers(cmd *cobra.Command, users []*models.User) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tACTIVE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.Email, u.Name, u.Role, u.IsActive, u.CreatedAt.Format("2006-01-02"))
	}
}

func runUsersAdd(cmd *cobra.Command, users *app.UserService) error {
	role, err := models.ParseRole(userRole)
	if err != nil {
		return err
	}
	user, err := users.Add(cmd.Context(), userName, userEmail, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", user.Email, user.Role, user.ID)
	return nil
}

func runUsersPromote(cmd *cobra.Command, users *app.UserService) error {
	user, err := users.Promote(cmd.Context(), promoteEmail, models.Role(promoteRole))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
	return nil
}
