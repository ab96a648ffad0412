package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/model"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
	"github.com/goliatone/go-formengine/pkg/validation"
)

type renderFlags struct {
	layoutID  string
	document  string
	sections  []string
	findings  string
	payload   string
	validate  bool
	renderer  string
	output    string
	action    string
	csrfToken string
}

func (f *renderFlags) bind(cmd *cobra.Command, requireLayout bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.layoutID, "layout", "l", "", "layout id to render")
	flags.StringVarP(&f.document, "document", "d", "", "JSON document to render against (- for stdin)")
	flags.StringSliceVarP(&f.sections, "sections", "s", nil, "section ids to render (default all)")
	flags.StringVar(&f.findings, "findings", "", "JSON array of findings to bind")
	flags.StringVar(&f.payload, "payload", "", "JSON server error payload (field path to messages)")
	flags.BoolVar(&f.validate, "validate", false, "run the built-in validator over the document")
	flags.StringVarP(&f.renderer, "renderer", "r", "", "renderer name (default from config)")
	flags.StringVarP(&f.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&f.action, "action", "", "form action for the html renderer")
	flags.StringVar(&f.csrfToken, "csrf-token", "", "CSRF token embedded as a hidden input")
	if requireLayout {
		_ = cmd.MarkFlagRequired("layout")
	}
}

func (f *renderFlags) request(a *app) (orchestrator.Request, error) {
	doc, err := a.readDocument(f.document)
	if err != nil {
		return orchestrator.Request{}, err
	}
	var findings []model.Finding
	if err := a.readJSON(f.findings, &findings); err != nil {
		return orchestrator.Request{}, err
	}
	for idx := range findings {
		findings[idx].Severity = model.ParseSeverity(string(findings[idx].Severity))
	}
	var payload map[string][]string
	if err := a.readJSON(f.payload, &payload); err != nil {
		return orchestrator.Request{}, err
	}

	options := render.RenderOptions{Action: f.action, Method: "post"}
	if f.csrfToken != "" {
		options = options.WithHidden(render.CSRFToken("_csrf", f.csrfToken))
	}
	return orchestrator.Request{
		LayoutID:      f.layoutID,
		Document:      doc,
		Sections:      f.sections,
		Findings:      findings,
		Payload:       payload,
		Validate:      f.validate,
		Renderer:      f.renderer,
		RenderOptions: options,
	}, nil
}

func newRenderCmd(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a layout against a document",
		Example: `  formengine render --layout clinical-finding --document visit.json --validate
  formengine render -l clinical-finding -s vitals,assessment -r json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			req, err := flags.request(a)
			if err != nil {
				return err
			}
			out, err := orch.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.writeOutput(flags.output, out)
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		layoutID string
		document string
		fieldID  string
		value    string
		raw      bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Write one field value into a document",
		Long: `Coerces --value by the field's type, writes it at the field's data
path and prints the updated document as JSON.`,
		Example: `  formengine edit --layout clinical-finding --document visit.json --field pulse --value 72`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			doc, err := a.readDocument(document)
			if err != nil {
				return err
			}
			edited, err := orch.Edit(cmd.Context(), orchestrator.EditRequest{
				LayoutID: layoutID,
				Document: doc,
				FieldID:  fieldID,
				Value:    value,
				Raw:      raw,
			})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(edited, "", "  ")
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
			return a.writeOutput(output, data)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&layoutID, "layout", "l", "", "layout id")
	flags.StringVarP(&document, "document", "d", "", "JSON document to edit (- for stdin)")
	flags.StringVarP(&fieldID, "field", "f", "", "field id")
	flags.StringVar(&value, "value", "", "new value")
	flags.BoolVar(&raw, "raw", false, "store the value as a string without coercion")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var (
		layoutID string
		document string
		sections []string
		format   string
		validate bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a document interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			doc, err := a.readDocument(document)
			if err != nil {
				return err
			}
			result, err := orch.Plan(cmd.Context(), orchestrator.Request{LayoutID: layoutID, Document: doc, Sections: sections})
			if err != nil {
				return err
			}

			if format == "" {
				format = a.cfg.Output
			}
			options := []tui.Option{
				tui.WithOutputFormat(tui.ParseOutputFormat(format)),
				tui.WithMaxPasses(a.cfg.MaxPasses),
			}
			if a.driver != nil {
				options = append(options, tui.WithPromptDriver(a.driver))
			} else {
				options = append(options, tui.WithStdio(os.Stdin, os.Stdout, a.errOut))
			}
			if validate {
				options = append(options, tui.WithValidator(validation.Default))
			}

			a.logger.Debug("filling layout", zap.String("layout", result.Layout.ID), zap.Strings("sections", sections))
			out, err := tui.New(options...).Render(cmd.Context(), result.Plan, render.RenderOptions{
				Layout:   result.Layout,
				Document: doc,
				Sections: sections,
			})
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(a.errOut, "aborted")
				return err
			}
			if err != nil {
				return err
			}
			return a.writeOutput(output, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&layoutID, "layout", "l", "", "layout id")
	flags.StringVarP(&document, "document", "d", "", "JSON document to start from")
	flags.StringSliceVarP(&sections, "sections", "s", nil, "section ids to fill (default all)")
	flags.StringVar(&format, "format", "", "output format: json, form or pretty (default from config)")
	flags.BoolVar(&validate, "validate", false, "re-prompt fields that fail validation")
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func newLayoutsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List available layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			if store.Empty() {
				fmt.Fprintln(a.out, "no layouts found")
				return nil
			}
			for _, id := range store.IDs() {
				form, _ := store.Layout(id)
				fmt.Fprintf(a.out, "%s\t%d sections\t%d fields\t%s\n", id, len(form.Sections), len(form.Fields), store.Source(id))
			}
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the layouts directory and re-render on change",
		Long: `Reloads the layouts directory whenever a layout file changes and
reports the loaded ids. With --layout, the layout is re-rendered after every
reload (to --output or stdout). Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Layouts == "" {
				return errors.New("watch requires --layouts or a layouts directory in the config file")
			}
			out := &lockedWriter{w: a.out}

			var watcher *layout.Watcher
			options, err := a.orchestratorOptions()
			if err != nil {
				return err
			}
			orch := orchestrator.New(append(options, orchestrator.WithStoreProvider(func() *layout.Store {
				return watcher.Store()
			}))...)

			rerender := func(ctx context.Context) {
				if flags.layoutID == "" {
					return
				}
				req, err := flags.request(a)
				if err == nil {
					var data []byte
					data, err = orch.Generate(ctx, req)
					if err == nil {
						err = a.writeTo(out, flags.output, data)
					}
				}
				if err != nil {
					a.logger.Error("re-render failed", zap.String("layout", flags.layoutID), zap.Error(err))
				}
			}

			ctx := cmd.Context()
			watcher, err = layout.NewWatcher(a.cfg.Layouts,
				layout.WithLogger(a.logger),
				layout.WithDebounce(a.cfg.Watch.Debounce),
				layout.OnReload(func(store *layout.Store) {
					fmt.Fprintf(out, "reloaded: %s\n", strings.Join(store.IDs(), ", "))
					rerender(ctx)
				}),
			)
			if err != nil {
				return err
			}
			defer watcher.Close()

			fmt.Fprintf(out, "watching %s: %s\n", a.cfg.Layouts, strings.Join(watcher.Store().IDs(), ", "))
			rerender(ctx)
			watcher.Start(ctx)
			<-ctx.Done()
			return nil
		},
	}
	flags.bind(cmd, false)
	cmd.Flags().Lookup("layout").Usage = "layout id to re-render after every reload"
	return cmd
}
