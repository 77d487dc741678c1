package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onetriage/leadintake/internal/form"
	"github.com/onetriage/leadintake/internal/leads"
	"github.com/onetriage/leadintake/internal/phone"
)

type submitOptions struct {
	fields   []string
	dryRun   bool
	logLevel string
}

// dispatcherFactory returns the dispatcher, the per-form fallback inboxes and a cleanup func.
type dispatcherFactory func(ctx context.Context, opts submitOptions) (form.Dispatcher, map[leads.FormType]string, func(), error)

func newRootCmd(out io.Writer, build dispatcherFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "leadctl",
		Short:         "Submit and inspect OneTriage lead forms",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.AddCommand(newSubmitCmd(build), newSchemaCmd(), newPhoneCmd())
	return root
}

func newSubmitCmd(build dispatcherFactory) *cobra.Command {
	var opts submitOptions
	cmd := &cobra.Command{
		Use:   "submit <contact|partner>",
		Short: "Fill and submit a form",
		Long: `Apply each --set field=value as a field edit, then submit the form.

Exits non-zero when validation fails or the system of record rejects the lead.`,
		Example: `  leadctl submit contact --set fullName="Jane Doe" --set email=jane@x.com \
    --set phone=5551234567 --set serviceInterest="Care coordination" \
    --set message="Need a demo of the platform" --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args[0], opts, build)
		},
	}
	cmd.Flags().StringArrayVar(&opts.fields, "set", nil, "field=value (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "record in memory and skip notifications")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "error", "log level for pipeline logs")
	return cmd
}

func runSubmit(cmd *cobra.Command, rawType string, opts submitOptions, build dispatcherFactory) error {
	ft, err := leads.ParseFormType(rawType)
	if err != nil {
		return err
	}
	values, err := parseAssignments(opts.fields)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, fallback, cleanup, err := build(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	ctrl, err := form.New(ft, d, form.WithMessages(form.MessagesFor(ft, fallback[ft])), form.WithResetDelay(0))
	if err != nil {
		return err
	}
	for _, kv := range values {
		if err := ctrl.OnFieldChange(kv[0], kv[1]); err != nil {
			return fmt.Errorf("--set %s: %w", kv[0], err)
		}
	}
	ctrl.OnChange(func(s form.State) {
		fmt.Fprintf(out, "state: %s\n", s.Phase)
	})

	err = ctrl.Submit(ctx)
	st := ctrl.State()
	switch {
	case errors.Is(err, form.ErrInvalid):
		printErrors(out, st.Errors)
		return err
	case err != nil:
		fmt.Fprintln(out, st.Errors[form.SubmitErrorKey])
		return err
	}
	fmt.Fprintln(out, st.SuccessMessage)
	if st.Lead != nil {
		fmt.Fprintf(out, "lead %d recorded at %s\n", st.Lead.ID, st.Lead.Timestamp)
	}
	return nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <contact|partner>",
		Short: "List a form's fields, required fields and select options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := leads.ParseFormType(args[0])
			if err != nil {
				return err
			}
			fields, _ := leads.NewFields(ft)
			required := map[string]bool{}
			for _, name := range leads.RequiredFields(ft) {
				required[name] = true
			}
			out := cmd.OutOrStdout()
			for _, name := range fields.Names() {
				marker := " "
				if required[name] {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			if ft == leads.FormPartner {
				fmt.Fprintf(out, "\n%s: %s\n", leads.FieldOrgType, strings.Join(leads.OrganizationTypes, " | "))
				fmt.Fprintf(out, "%s: %s\n", leads.FieldPotentialUsers, strings.Join(leads.PotentialUserBrackets, " | "))
			}
			return nil
		},
	}
}

func newPhoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phone <raw>...",
		Short: "Show how phone input is formatted and whether it is valid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, raw := range args {
				formatted := phone.Format(raw)
				status := "invalid"
				if phone.Valid(formatted) {
					status = "valid"
				}
				fmt.Fprintf(out, "%q -> %q (%s)\n", raw, formatted, status)
			}
			return nil
		},
	}
}

// parseAssignments keeps --set order; a field set twice keeps its last value.
func parseAssignments(raw []string) ([][2]string, error) {
	out := make([][2]string, 0, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--set %q: want field=value", item)
		}
		out = append(out, [2]string{name, value})
	}
	return out, nil
}

func printErrors(out io.Writer, errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, errs[name])
	}
}
