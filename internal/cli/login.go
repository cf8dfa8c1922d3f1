package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/family-connect/internal/client/authflow"
	"github.com/spf13/cobra"
)

type loginFlags struct {
	phone     string
	otp       string
	name      string
	pushToken string
}

func newLoginCmd(opts *options) *cobra.Command {
	f := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your phone number",
		Long: `Sign in with a one-time code sent by SMS.

On a terminal you are prompted for each value. Without one, run it twice:
  familyctl login --phone 9876543210
  familyctl login --phone 9876543210 --otp 123456 [--name "Asha Rao"]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.deps.Session.IsLoggedIn() {
				u := opts.deps.Session.User()
				if u != nil {
					fmt.Fprintln(cmd.OutOrStdout(), muted.Render("Already logged in as "+u.Name+"."))
					return nil
				}
			}
			flow := authflow.New(opts.deps.API, opts.deps.Session, authflow.WithPushToken(f.pushToken))
			if opts.interactive() && f.otp == "" {
				return runInteractiveLogin(cmd, opts, flow, f)
			}
			return runFlagLogin(cmd, opts, flow, f)
		},
	}
	cmd.Flags().StringVar(&f.phone, "phone", "", "mobile number")
	cmd.Flags().StringVar(&f.otp, "otp", "", "code received by SMS")
	cmd.Flags().StringVar(&f.name, "name", "", "your name, needed once for a new account")
	cmd.Flags().StringVar(&f.pushToken, "push-token", "", "push notification token for this device")
	return cmd
}

func runFlagLogin(cmd *cobra.Command, opts *options, flow *authflow.Flow, f *loginFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// A code verified by an earlier run is gone server side; carry on from
	// the stored ticket unless a different number was given.
	resumed := flow.Step() != authflow.StepPhone && (f.phone == "" || flow.Continues(f.phone))
	if !resumed {
		if f.phone == "" {
			return errors.New("--phone is required")
		}
		if f.otp == "" {
			d, err := flow.Start(ctx, f.phone)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successCard("Code sent to "+d.Phone,
				field("Expires in", fmt.Sprintf("%ds", d.ExpiresIn)),
				muted.Render("Re-run with --otp <code> to continue.")))
			return nil
		}
		if err := flow.Resume(f.phone); err != nil {
			return err
		}
		if _, err := flow.Verify(ctx, f.otp); err != nil {
			return err
		}
	}

	if flow.Step() == authflow.StepName {
		if strings.TrimSpace(f.name) == "" {
			fmt.Fprintln(out, muted.Render("New account: re-run with --name \"Your Name\" to finish."))
			return nil
		}
		if _, err := flow.SubmitName(ctx, f.name); err != nil {
			return err
		}
	}
	return finishLogin(ctx, cmd, opts, flow)
}

func runInteractiveLogin(cmd *cobra.Command, opts *options, flow *authflow.Flow, f *loginFlags) error {
	ctx := cmd.Context()

	if flow.Step() == authflow.StepPhone {
		phone := f.phone
		if phone == "" {
			if err := prompt(huh.NewInput().Title("Mobile number").Value(&phone).Validate(notBlank)); err != nil {
				return err
			}
		}
		d, err := flow.Start(ctx, phone)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), muted.Render(fmt.Sprintf("Code sent to %s, valid for %ds.", d.Phone, d.ExpiresIn)))
	}

	for flow.Step() == authflow.StepOTP {
		var code string
		if err := prompt(huh.NewInput().Title("Verification code").Value(&code).Validate(notBlank)); err != nil {
			return err
		}
		if _, err := flow.Verify(ctx, code); err != nil {
			if flow.Step() != authflow.StepOTP {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}

	if flow.Step() == authflow.StepName {
		name := f.name
		if name == "" {
			if err := prompt(huh.NewInput().Title("Your name").Value(&name).Validate(notBlank)); err != nil {
				return err
			}
		}
		if _, err := flow.SubmitName(ctx, name); err != nil {
			return err
		}
	}
	return finishLogin(ctx, cmd, opts, flow)
}

// finishLogin runs the login step in the background while the terminal shows progress.
func finishLogin(ctx context.Context, cmd *cobra.Command, opts *options, flow *authflow.Flow) error {
	if flow.Step() != authflow.StepLogin {
		return authflow.ErrOutOfOrder
	}
	if !opts.jsonOutput {
		fmt.Fprintln(cmd.ErrOrStderr(), muted.Render("Signing in..."))
	}
	res := <-flow.LoginInBackground(ctx)
	if res.Err != nil {
		return res.Err
	}
	return opts.output(cmd, res.User, func() string {
		return successCard("Welcome, "+res.User.Name, field("Phone", res.User.Phone))
	})
}

func prompt(input huh.Field) error {
	err := huh.NewForm(huh.NewGroup(input)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errors.New("login cancelled")
	}
	return err
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}
