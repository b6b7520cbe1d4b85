package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmdbgroup/internal/app"
	"cmdbgroup/internal/drag"
	"cmdbgroup/internal/snapshot"
	"cmdbgroup/internal/store"
	"cmdbgroup/ioc"
	"cmdbgroup/pkg/logging"
)

type globalOptions struct {
	LogLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "invctl",
		Short:         "离线检查与调试库存分组变更",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "warn", "日志级别")
	addClassify(root)
	addApply(root, g)
	addValidate(root)
	addInit(root, g)
	addShow(root)
	addVersion(root)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type classifyOptions struct {
	Source      string
	RowID       string
	RowSelected bool
	Selected    []string
	GroupHeader bool
	Leaves      []string
	Copy        bool
}

type classifyOutput struct {
	Intent drag.Intent `json:"intent"`
	IDs    []string    `json:"ids"`
}

func addClassify(root *cobra.Command) {
	o := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "对一次拖拽开始做意图分类",
		Example: `
invctl classify --source Device --row n1
invctl classify --source Application --row n1 --row-selected --selected n1,n2 --copy
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := drag.DragInput{
				Source:       drag.Collection(o.Source),
				RowID:        o.RowID,
				RowSelected:  o.RowSelected,
				SelectedIDs:  o.Selected,
				GroupHeader:  o.GroupHeader,
				LeafIDs:      o.Leaves,
				CopyModifier: o.Copy,
			}
			if !in.Source.Valid() {
				return fmt.Errorf("unknown source collection %q", o.Source)
			}
			intent := drag.Classify(in)
			return writeJSON(cmd.OutOrStdout(), classifyOutput{Intent: intent, IDs: drag.DraggedIDs(in, intent)})
		},
	}
	cmd.Flags().StringVar(&o.Source, "source", string(drag.CollectionDevice), "拖拽来源集合")
	cmd.Flags().StringVar(&o.RowID, "row", "", "被拖拽的行")
	cmd.Flags().BoolVar(&o.RowSelected, "row-selected", false, "被拖拽的行是否在多选集合中")
	cmd.Flags().StringSliceVar(&o.Selected, "selected", nil, "当前多选集合")
	cmd.Flags().BoolVar(&o.GroupHeader, "group-header", false, "拖拽的是分组表头")
	cmd.Flags().StringSliceVar(&o.Leaves, "leaves", nil, "分组表头下的叶子行")
	cmd.Flags().BoolVarP(&o.Copy, "copy", "c", false, "复制修饰键已按下")
	root.AddCommand(cmd)
}

type applyOptions struct {
	Snapshot string
	Payload  string
	Out      string
}

func addApply(root *cobra.Command, g *globalOptions) {
	o := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "把拖放载荷应用到 YAML 快照",
		Example: `
invctl apply --snapshot inventory.yaml --payload drop.json --out next.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewZapLogger(g.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runApply(cmd.Context(), cmd.OutOrStdout(), o, logger)
		},
	}
	cmd.Flags().StringVar(&o.Snapshot, "snapshot", "", "YAML 快照文件")
	cmd.Flags().StringVar(&o.Payload, "payload", "", "JSON 拖放载荷文件")
	cmd.Flags().StringVarP(&o.Out, "out", "o", "", "变更后快照的输出路径")
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("payload")
	root.AddCommand(cmd)
}

type applyOutput struct {
	Rejected bool     `json:"rejected,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Message  string   `json:"message,omitempty"`
}

func runApply(ctx context.Context, w io.Writer, o *applyOptions, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	model, err := loadSnapshot(o.Snapshot)
	if err != nil {
		return err
	}
	payloadPath, err := expandPath(o.Payload)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("读取载荷失败: %w", err)
	}
	var p drag.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("解析载荷失败: %w", err)
	}

	st := store.NewMemoryStore(snapshot.NewStaticSource(model), nil, "local", "", logger)
	cache := snapshot.NewCache(st, logger)
	flow := &app.DropFlow{Committer: &app.Committer{Cache: cache, Saver: st, Logger: logger}, Logger: logger}
	res, err := flow.Run(ctx, p)
	if errors.Is(err, app.ErrDropRejected) {
		return writeJSON(w, applyOutput{Rejected: true})
	}
	if err != nil {
		return err
	}
	if o.Out != "" {
		entry, err := cache.Current(ctx)
		if err != nil {
			return err
		}
		out, err := expandPath(o.Out)
		if err != nil {
			return err
		}
		if err := snapshot.WriteFile(out, entry.Model); err != nil {
			return err
		}
	}
	return writeJSON(w, applyOutput{Errors: res.Errors, Message: res.Message})
}

func addValidate(root *cobra.Command) {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "检查快照的分组约束",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadSnapshot(path)
			if err != nil {
				return err
			}
			if err := m.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d applications, %d move groups\n",
				len(m.Nodes), len(m.Applications), len(m.MoveGroups))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "snapshot", "", "YAML 快照文件")
	_ = cmd.MarkFlagRequired("snapshot")
	root.AddCommand(cmd)
}

func addInit(root *cobra.Command, g *globalOptions) {
	var configPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "初始化 schema 并在库存为空时导入种子快照",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger, err := logging.NewZapLogger(g.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			backend, cleanup, err := ioc.InitBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()
			flow := &app.InitFlow{Store: backend.Schema, SeedFile: cfg.Source.SeedFile, Logger: logger}
			if err := flow.Run(ctx); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "init completed")
			return err
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "配置文件路径")
	root.AddCommand(cmd)
}
