package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

func (c *cli) namespacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespaces",
		Aliases: []string{"ns"},
		Short:   "List namespaces",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.connect()
			if err != nil {
				return err
			}
			uc := usecase.NewNamespaceUseCase(store, c.logger, c.cfg.Timeout())
			namespaces, err := uc.ListNamespaces(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(namespaces))
			for _, ns := range usecase.FilterNamespaces(namespaces, "", c.cfg.FavoriteNamespaces) {
				id := ns.ID
				if c.cfg.IsFavorite(ns.ID) {
					id += " *"
				}
				rows = append(rows, []string{id, ns.DisplayName(), strconv.Itoa(ns.ConfigCount), ns.Description})
			}
			writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "CONFIGS", "DESCRIPTION"}, rows)
			return nil
		},
	}

	var description string
	save := &cobra.Command{
		Use:   "save NAME",
		Short: "Create a namespace or update its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.connect()
			if err != nil {
				return err
			}
			uc := usecase.NewNamespaceUseCase(store, c.logger, c.cfg.Timeout())
			if err := uc.SaveNamespace(cmd.Context(), args[0], description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "namespace %s saved\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
	save.Flags().StringVarP(&description, "description", "d", "", "namespace description")
	cmd.AddCommand(save)
	return cmd
}

func (c *cli) groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the groups of a namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := c.browser()
			if err != nil {
				return err
			}
			if err := b.LoadGroups(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range b.Groups() {
				fmt.Fprintln(out, g)
			}
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var (
		filter string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of a group's entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, err := c.requireGroup()
			if err != nil {
				return err
			}
			b, err := c.browser()
			if err != nil {
				return err
			}

			req, err := b.SelectGroup(group)
			if err != nil {
				return err
			}
			if filter != "" {
				if req, err = b.SetFilter(filter); err != nil {
					return err
				}
			}
			if err := b.LoadConfigs(cmd.Context(), req); err != nil {
				return err
			}
			if page > 1 {
				if req, err = b.GoToPage(page); err != nil {
					return fmt.Errorf("page %d: %w", page, err)
				}
				if err := b.LoadConfigs(cmd.Context(), req); err != nil {
					return err
				}
			}

			p := b.Pagination()
			rows := make([][]string, 0, len(p.Configs()))
			for _, e := range p.Configs() {
				rows = append(rows, []string{e.DataID, string(e.Type.Normalize()), e.Description})
			}
			out := cmd.OutOrStdout()
			writeTable(out, []string{"DATA ID", "TYPE", "DESCRIPTION"}, rows)
			fmt.Fprintf(out, "\npage %d/%d, %d entries  %s\n",
				p.CurrentPage(), max(1, p.TotalPages()), p.TotalCount(), pageStrip(b.PageStrip(), p.CurrentPage()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only entries whose dataId contains this")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

// pageStrip renders the strip with the current page in brackets.
func pageStrip(items []usecase.PageItem, current int) string {
	cells := make([]string, 0, len(items))
	for _, it := range items {
		if !it.Ellipsis && it.Page == current {
			cells = append(cells, "["+it.String()+"]")
		} else {
			cells = append(cells, it.String())
		}
	}
	return strings.Join(cells, " ")
}

func (c *cli) getCmd() *cobra.Command {
	var meta bool
	cmd := &cobra.Command{
		Use:   "get DATA_ID",
		Short: "Print an entry's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := c.requireGroup()
			if err != nil {
				return err
			}
			b, err := c.browser()
			if err != nil {
				return err
			}
			req, err := b.OpenView(entity.ConfigKey{Group: group, DataID: args[0]})
			if err != nil {
				return err
			}
			if err := b.LoadDetail(cmd.Context(), req); err != nil {
				return err
			}

			e := b.Modal().Entry()
			out := cmd.OutOrStdout()
			if meta {
				fmt.Fprintf(out, "# %s\n# type: %s\n", e.Key(), e.Type.Normalize())
				if e.Description != "" {
					fmt.Fprintf(out, "# description: %s\n", e.Description)
				}
			}
			fmt.Fprint(out, e.Content)
			if !strings.HasSuffix(e.Content, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&meta, "meta", false, "print key, type and description before the content")
	return cmd
}

func (c *cli) putCmd() *cobra.Command {
	var (
		file        string
		typ         string
		description string
		create      bool
	)
	cmd := &cobra.Command{
		Use:   "put DATA_ID",
		Short: "Update an entry, or create it with --create",
		Long: `put replaces an entry's content with the contents of --file
(stdin by default). Updating an entry that does not exist fails; pass
--create to publish a new one. Creating an entry that already exists fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := c.requireGroup()
			if err != nil {
				return err
			}
			content, err := readContent(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			b, err := c.browser()
			if err != nil {
				return err
			}

			dataID := args[0]
			mc := b.Modal()
			if create {
				b.OpenCreate()
				if err := mc.SetGroup(group); err != nil {
					return err
				}
				if err := mc.SetDataID(dataID); err != nil {
					return err
				}
				if typ == "" {
					typ = string(entity.TypeFromDataID(dataID))
				}
			} else {
				req, err := b.OpenEdit(entity.ConfigKey{Group: group, DataID: dataID})
				if err != nil {
					return err
				}
				if err := b.LoadDetail(cmd.Context(), req); err != nil {
					return err
				}
			}

			if err := mc.SetContent(content); err != nil {
				return err
			}
			if typ != "" {
				if err := mc.SetType(entity.ConfigType(typ).Normalize()); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("description") {
				if err := mc.SetDescription(description); err != nil {
					return err
				}
			}
			if err := usecase.ValidateContent(mc.Entry().Type, content); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			key := mc.Entry().Key()
			if err := b.Submit(cmd.Context()); err != nil {
				return err
			}
			verb := "updated"
			if create {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, key)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "file with the new content, - for stdin")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "content format: text, json, xml, yaml, html or properties")
	cmd.Flags().StringVarP(&description, "description", "d", "", "entry description")
	cmd.Flags().BoolVar(&create, "create", false, "create a new entry instead of updating")
	return cmd
}

func readContent(stdin io.Reader, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" || file == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch DATA_ID...",
		Short: "Print a line whenever one of the entries changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := c.requireGroup()
			if err != nil {
				return err
			}
			store, err := c.connect()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.watch(ctx, cmd.OutOrStdout(), usecase.NewConfigWatcher(store, c.cfg.Interval(), c.logger), group, args)
		},
	}
}

func (c *cli) watch(ctx context.Context, out io.Writer, w *usecase.ConfigWatcher, group string, dataIDs []string) error {
	ns := c.targetNamespace()
	for _, id := range dataIDs {
		w.Watch(entity.ConfigKey{Namespace: ns, Group: group, DataID: id})
	}
	c.logger.Info("watching", zap.Int("keys", len(dataIDs)), zap.Duration("interval", c.cfg.Interval()))
	fmt.Fprintf(out, "watching %d entries in %s/%s every %s\n", len(dataIDs), ns, group, c.cfg.Interval())

	go w.Run(ctx)
	for ev := range w.Events() {
		what := "changed"
		if ev.Deleted {
			what = "deleted"
		}
		fmt.Fprintf(out, "%s %s %s %s -> %s\n",
			ev.At.Format(time.RFC3339), what, ev.Key, short(ev.OldFingerprint), short(ev.NewFingerprint))
	}
	return nil
}

func short(fingerprint string) string {
	if fingerprint == "" {
		return "-"
	}
	if len(fingerprint) > 8 {
		return fingerprint[:8]
	}
	return fingerprint
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config or store needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "confnav version %s\n", version)
		},
	}
}
