package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"cmdbgroup/internal/domain"
	"cmdbgroup/internal/snapshot"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var bold = color.New(color.Bold).SprintFunc()

// expandPath 展开 ~ 开头的路径。
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return homedir.Expand(path)
}

func loadSnapshot(path string) (domain.Model, error) {
	p, err := expandPath(path)
	if err != nil {
		return domain.Model{}, err
	}
	return snapshot.LoadFile(p)
}

func addShow(root *cobra.Command) {
	var path string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "以表格列出设备及其分组",
		Example: `
invctl show --snapshot ~/inventory.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadSnapshot(path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), inventoryTable(&m))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "snapshot", "", "YAML 快照文件")
	_ = cmd.MarkFlagRequired("snapshot")
	root.AddCommand(cmd)
}

// inventoryTable 每个设备一行：类型、所属应用、生效的迁移组、是否排除。
func inventoryTable(m *domain.Model) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("NODE"), bold("TYPE"), bold("APPLICATIONS"), bold("MOVE GROUP"), bold("EXCLUDED"))
	for _, n := range m.Nodes {
		apps := make([]string, 0, len(m.ApplicationsOf(n.ID)))
		for _, id := range m.ApplicationsOf(n.ID) {
			apps = append(apps, groupName(m, id))
		}
		mg := "-"
		if id := m.EffectiveMoveGroup(n.ID); id != "" {
			mg = moveGroupName(m, id)
		}
		excluded := ""
		if n.Excluded {
			excluded = "yes"
		}
		tbl.AddRow(n.Name, string(n.Type), strings.Join(apps, ","), mg, excluded)
	}
	return tbl
}

func groupName(m *domain.Model, id string) string {
	for _, a := range m.Applications {
		if a.ID == id && a.Name != "" {
			return a.Name
		}
	}
	return id
}

func moveGroupName(m *domain.Model, id string) string {
	for _, g := range m.MoveGroups {
		if g.ID == id && g.Name != "" {
			return g.Name
		}
	}
	return id
}

func addVersion(root *cobra.Command) {
	shortened := false
	output := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "打印 invctl 版本",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), goversion.FuncWithOutput(shortened, version, commit, date, output))
		},
	}
	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "只打印版本号")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "输出格式，yaml 或 json")
	root.AddCommand(cmd)
}
