package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mentally-gamez-soft/ws-blog/internal/events"
	"github.com/mentally-gamez-soft/ws-blog/internal/users"
)

var (
	userName  string
	userEmail string
	userAdmin bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(cmd, func(svc *users.Service) error {
			u, err := svc.SignUp(cmd.Context(), users.SignUpInput{Name: userName, Email: userEmail})
			if err != nil {
				return err
			}
			if userAdmin {
				if u, err = svc.SetAdmin(cmd.Context(), u.ID, true); err != nil {
					return err
				}
			}
			return printUsers(cmd, []*users.User{u})
		})
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(cmd, func(svc *users.Service) error {
			list, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd, list)
		})
	},
}

func setAdminCmd(use, short string, isAdmin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, func(svc *users.Service) error {
				u, err := svc.GetUserByEmail(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if u, err = svc.SetAdmin(cmd.Context(), u.ID, isAdmin); err != nil {
					return err
				}
				return printUsers(cmd, []*users.User{u})
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersListCmd,
		setAdminCmd("promote", "Grant admin rights", true),
		setAdminCmd("demote", "Revoke admin rights", false),
	)

	usersCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	usersCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant admin rights")
	_ = usersCreateCmd.MarkFlagRequired("name")
	_ = usersCreateCmd.MarkFlagRequired("email")
}

func withUsers(cmd *cobra.Command, fn func(*users.Service) error) error {
	sqlDB, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Users created here get the same welcome email as API sign-ups when a
	// broker is configured.
	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}
	return fn(users.NewService(users.NewPostgresRepository(sqlDB), publisher, logger()))
}

func printUsers(cmd *cobra.Command, list []*users.User) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), list)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tADMIN")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.IsAdmin)
	}
	return w.Flush()
}
