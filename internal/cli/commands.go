package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/dropwise/internal/drops"
	"github.com/Makepad-fr/dropwise/internal/form"
	"github.com/Makepad-fr/dropwise/internal/model"
	"github.com/Makepad-fr/dropwise/internal/session"
	"github.com/Makepad-fr/dropwise/internal/ui"
)

// formErr reports a failed submission: field errors are usage errors,
// the general error is a runtime one.
func formErr(f *form.Form) error {
	if len(f.Errors) > 0 {
		fields := make([]string, 0, len(f.Errors))
		for k := range f.Errors {
			fields = append(fields, string(k))
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, k := range fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", k, f.Errors[form.Field(k)]))
		}
		return usageError{errors.New(strings.Join(msgs, "; "))}
	}
	if f.General != "" {
		return errors.New(f.General)
	}
	return errors.New(form.MsgUnexpected)
}

// dropErr is formErr for drop forms, whose 401 failures leave no message
// behind but do end the session.
func (e *env) dropErr(f *form.Form) error {
	if !e.sess.IsAuthenticated() {
		return errSessionExpired
	}
	return formErr(f)
}

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := e.hydrate(ctx); err != nil {
				return err
			}
			var err error
			if email == "" {
				if email, err = e.ask("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = e.askSecret("Password (" + form.PasswordPlaceholder + "): "); err != nil {
					return err
				}
			}

			l := form.NewLogin()
			l.Set(form.Email, strings.TrimSpace(email))
			l.Set(form.Password, password)
			if out := l.Submit(ctx, e.auth, e.sess); !out.OK {
				return formErr(&l.Form)
			}
			e.log.Info("user logged in", zap.String("email", l.Get(form.Email)))
			ui.OK("logged in as " + l.Get(form.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newSignupCmd(e *env) *cobra.Command {
	var email, password, confirm string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = e.ask("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = e.askSecret("Password (" + form.PasswordPlaceholder + "): "); err != nil {
					return err
				}
				if confirm == "" {
					if confirm, err = e.askSecret("Confirm password: "); err != nil {
						return err
					}
				}
			}
			if confirm == "" {
				confirm = password
			}

			s := form.NewSignup()
			s.Set(form.Email, strings.TrimSpace(email))
			s.Set(form.Password, password)
			s.Set(form.Confirm, confirm)
			addr := s.Get(form.Email)
			if out := s.Submit(cmd.Context(), e.auth); !out.OK {
				return formErr(&s.Form)
			}
			ui.OK("account created for " + addr)
			ui.Hint("Run `dropwise login` to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation (defaults to --password)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.hydrate(cmd.Context()); err != nil {
				return err
			}
			fromEnv := e.sess.Snapshot().Source == session.SourceEnv
			e.sess.Logout()
			e.log.Info("user logged out")
			ui.OK("logged out")
			if fromEnv {
				ui.Hint(session.TokenEnv + " is set; unset it to stay logged out.")
			}
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and server in use",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.hydrate(cmd.Context()); err != nil {
				return err
			}
			ui.Panel(statusLines(e.cfg.APIURL, e.sess.Snapshot(), time.Now()))
			return nil
		},
	}
}

func statusLines(apiURL string, snap session.Session, now time.Time) []string {
	t := ui.Current()
	lines := []string{
		ui.C(t.Title, "Dropwise"),
		"",
		ui.C(t.Muted, "server   ") + apiURL,
	}
	if !snap.IsAuthenticated {
		return append(lines, ui.C(t.Muted, "session  ")+ui.C(t.Error, "logged out"))
	}
	lines = append(lines, ui.C(t.Muted, "session  ")+ui.C(t.Success, "logged in")+ui.C(t.Muted, " ("+snap.Source+")"))

	c, err := session.ParseClaims(snap.Token)
	if err != nil {
		return append(lines, ui.C(t.Muted, "token    opaque"))
	}
	if c.Email != "" {
		lines = append(lines, ui.C(t.Muted, "email    ")+c.Email)
	}
	if c.Subject != "" {
		lines = append(lines, ui.C(t.Muted, "user     ")+c.Subject)
	}
	if c.ExpiresAt != nil {
		exp := humanize.RelTime(*c.ExpiresAt, now, "ago", "from now")
		if c.Expired(now) {
			exp = ui.C(t.Error, "expired "+exp)
		} else {
			exp = "expires " + exp
		}
		lines = append(lines, ui.C(t.Muted, "token    ")+exp)
	}
	return lines
}

func newListCmd(e *env) *cobra.Command {
	var status, tag string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List drops",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var st model.DropStatus
			if status != "" && status != "all" {
				s, ok := model.ParseStatus(status)
				if !ok {
					return usagef("unknown status %q (want new, sent, archived, snoozed or all)", status)
				}
				st = s
			}
			ctx := cmd.Context()
			if err := e.authed(ctx); err != nil {
				return err
			}
			all, err := e.client.Drops().List(ctx)
			if err != nil {
				e.log.Warn("list drops", zap.Error(err))
				return apiErr(fmt.Errorf("%s (%w)", drops.MsgFetchFailed, err))
			}
			ui.Panel(listLines(drops.NewList(all), st, tag, time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "new, sent, archived, snoozed or all")
	cmd.Flags().StringVar(&tag, "tag", "", "only drops carrying this tag")
	return cmd
}

// dropFlags are shared by add and edit.
type dropFlags struct {
	url, topic, tags, notes string
}

func (f *dropFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "link to save")
	cmd.Flags().StringVar(&f.topic, "topic", "", "what the link is about")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free form notes (markdown)")
}

// apply copies the flags the user set into d.
func (f *dropFlags) apply(cmd *cobra.Command, d *form.Drop) {
	set := map[string]form.Field{"url": form.URL, "topic": form.Topic, "tags": form.Tags, "notes": form.Notes}
	vals := map[string]string{"url": f.url, "topic": f.topic, "tags": f.tags, "notes": f.notes}
	for name, field := range set {
		if cmd.Flags().Changed(name) {
			d.Set(field, vals[name])
		}
	}
}

func newAddCmd(e *env) *cobra.Command {
	var f dropFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new drop",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := form.NewAddDrop()
			f.apply(cmd, d)
			if !d.Validate() {
				return formErr(&d.Form)
			}
			if err := e.authed(ctx); err != nil {
				return err
			}
			list := drops.NewList(nil)
			out := d.Submit(ctx, e.client.Drops(), list)
			if !out.OK {
				return e.dropErr(&d.Form)
			}
			if out.Refetch {
				ui.OK(fmt.Sprintf("added %q", d.Input().Topic))
				return nil
			}
			saved := list.All()[0]
			ui.OK(fmt.Sprintf("added %q (%s)", saved.Topic, saved.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var f dropFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a drop's URL, topic, tags or notes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.authed(ctx); err != nil {
				return err
			}
			all, err := e.client.Drops().List(ctx)
			if err != nil {
				return apiErr(fmt.Errorf("%s (%w)", drops.MsgFetchFailed, err))
			}
			list := drops.NewList(all)
			cur, ok := list.Get(args[0])
			if !ok {
				return fmt.Errorf("no drop with id %q", args[0])
			}

			d := form.NewEditDrop(cur)
			f.apply(cmd, d)
			if out := d.Submit(ctx, e.client.Drops(), list); !out.OK {
				return e.dropErr(&d.Form)
			}
			ui.OK(fmt.Sprintf("updated %q", d.Input().Topic))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a drop",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.authed(ctx); err != nil {
				return err
			}
			if err := e.client.Drops().Delete(ctx, args[0]); err != nil {
				e.log.Warn("delete drop", zap.String("id", args[0]), zap.Error(err))
				return apiErr(fmt.Errorf("%s (%w)", drops.MsgDeleteFailed, err))
			}
			ui.OK("removed " + args[0])
			return nil
		},
	}
}

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive client",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runTUI(cmd.Context())
		},
	}
}
