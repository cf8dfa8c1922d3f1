package cli

import (
	"fmt"

	"github.com/family-connect/internal/domain"
	"github.com/spf13/cobra"
)

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.deps.Session.IsLoggedIn() {
				if err := opts.deps.API.Logout(cmd.Context()); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), muted.Render("server logout failed: "+err.Error()))
				}
			}
			if err := opts.deps.Session.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successCard("Logged out"))
			return nil
		},
	}
}

func newDashboardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the home menu and current ads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			d, err := opts.deps.API.Dashboard(cmd.Context())
			if err != nil {
				return opts.signedOut(err)
			}
			return opts.output(cmd, d, func() string { return renderDashboard(d) })
		},
	}
}

func newRemindersCmd(opts *options) *cobra.Command {
	var kind string
	var days int
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Upcoming birthdays and anniversaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			rs, err := opts.deps.API.Reminders(cmd.Context(), kind, days)
			if err != nil {
				return opts.signedOut(err)
			}
			return opts.output(cmd, rs, func() string { return renderReminders(rs) })
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "all", "birthday, anniversary or all")
	cmd.Flags().IntVar(&days, "days", 7, "look-ahead window in days (0-366)")
	return cmd
}

func newEventsCmd(opts *options) *cobra.Command {
	var scope string
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Community events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			es, err := opts.deps.API.Events(cmd.Context(), scope, limit)
			if err != nil {
				return opts.signedOut(err)
			}
			return opts.output(cmd, es, func() string { return renderEvents(es) })
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "upcoming", "upcoming, past or all")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (server default 20)")
	return cmd
}

func newVideosCmd(opts *options) *cobra.Command {
	var category string
	var limit int
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Video gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			vs, err := opts.deps.API.Videos(cmd.Context(), category, limit)
			if err != nil {
				return opts.signedOut(err)
			}
			return opts.output(cmd, vs, func() string { return renderVideos(vs) })
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of videos (server default 20)")
	return cmd
}

func newNotificationsCmd(opts *options) *cobra.Command {
	var unreadOnly bool
	var readID string
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications or mark one as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			if readID != "" {
				n, err := opts.deps.API.ReadNotification(cmd.Context(), readID)
				if err != nil {
					return opts.signedOut(err)
				}
				return opts.output(cmd, n, func() string { return successCard("Marked as read", n.Title) })
			}
			ns, err := opts.deps.API.Notifications(cmd.Context(), unreadOnly)
			if err != nil {
				return opts.signedOut(err)
			}
			return opts.output(cmd, ns, func() string { return renderNotifications(ns) })
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().StringVar(&readID, "read", "", "mark the notification with this id as read")
	return cmd
}

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			u, err := opts.deps.API.Profile(cmd.Context())
			if err != nil {
				return opts.signedOut(err)
			}
			if err := opts.deps.Session.SetUser(u); err != nil {
				return err
			}
			return opts.output(cmd, u, func() string { return renderUser(u) })
		},
	}

	var name, email, city, birthday, anniversary string
	edit := &cobra.Command{
		Use:   "edit",
		Short: "Change profile fields; pass an empty value to clear one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			req := domain.UpdateProfileRequest{}
			set := func(flag string, v *string) *string {
				if cmd.Flags().Changed(flag) {
					return v
				}
				return nil
			}
			req.Name = set("name", &name)
			req.Email = set("email", &email)
			req.City = set("city", &city)
			req.Birthday = set("birthday", &birthday)
			req.Anniversary = set("anniversary", &anniversary)
			if req == (domain.UpdateProfileRequest{}) {
				return fmt.Errorf("nothing to change, pass at least one of --name --email --city --birthday --anniversary")
			}
			u, err := opts.deps.API.UpdateProfile(cmd.Context(), req)
			if err != nil {
				return opts.signedOut(err)
			}
			if err := opts.deps.Session.SetUser(u); err != nil {
				return err
			}
			return opts.output(cmd, u, func() string { return renderUser(u) })
		},
	}
	edit.Flags().StringVar(&name, "name", "", "full name")
	edit.Flags().StringVar(&email, "email", "", "email address")
	edit.Flags().StringVar(&city, "city", "", "city")
	edit.Flags().StringVar(&birthday, "birthday", "", "birthday, YYYY-MM-DD")
	edit.Flags().StringVar(&anniversary, "anniversary", "", "wedding anniversary, YYYY-MM-DD")

	cmd.AddCommand(show, edit)
	return cmd
}
