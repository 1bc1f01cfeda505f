package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"calscope/internal/adapter/token"
	"calscope/internal/domain"
	"calscope/internal/usecase"
)

var (
	authEmail     string
	authPassword  string
	authFirstName string
	authLastName  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the calorie service",
	Long: `Log in and store the session token.
The password is prompted for when --password is not given.

Examples:
  calscope login --email you@example.com`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the calorie service",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.authUseCase().Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the session state",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "account email (required)")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted when empty)")
		c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&authFirstName, "first-name", "", "first name (required)")
	registerCmd.Flags().StringVar(&authLastName, "last-name", "", "last name (required)")
	registerCmd.MarkFlagRequired("first-name")
	registerCmd.MarkFlagRequired("last-name")
}

func readPassword() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	rl, err := readline.New("")
	if err != nil {
		return "", fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	pw, err := rl.ReadPassword("Password: ")
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := domain.LoginRequest{Email: authEmail, Password: password}
	if err := a.authUseCase().Login(cmd.Context(), req); err != nil {
		return authFailure(err, usecase.LoginFailedMessage)
	}
	fmt.Println("Logged in.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := domain.RegisterRequest{
		FirstName: authFirstName,
		LastName:  authLastName,
		Email:     authEmail,
		Password:  password,
	}
	if err := a.authUseCase().Register(cmd.Context(), req); err != nil {
		return authFailure(err, usecase.RegisterFailedMessage)
	}
	fmt.Println("Account created; logged in.")
	return nil
}

func authFailure(err error, fallback string) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return errors.New(usecase.AuthErrorMessage(err, fallback))
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	raw, ok := a.auth.Token()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}
	if !a.authUseCase().Guard(time.Now()) {
		fmt.Println("Session expired; token cleared. Run 'calscope login'.")
		return nil
	}
	exp, _ := token.ExpiresAt(raw)
	fmt.Printf("Logged in (session expires %s)\n", exp.Local().Format(time.RFC1123))
	return nil
}
