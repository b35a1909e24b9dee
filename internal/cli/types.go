package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/agnivade/levenshtein"
	"github.com/spf13/cobra"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/types"
)

type typeRow struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Fields int    `json:"fields"`
	Entity bool   `json:"entity,omitempty"`
}

func newTypesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the types of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			var rows []typeRow
			for _, t := range s.Types() {
				row := typeRow{Name: t.TypeName(), Kind: t.Kind(), Entity: s.Federation().IsEntity(t.TypeName())}
				if c := complexOf(t); c != nil {
					row.Fields = c.Len()
				}
				rows = append(rows, row)
			}
			return render(cmd, a.format, Renderer[typeRow]{
				Data: rows,
				TextFormat: func(r typeRow) string {
					return fmt.Sprintf("%s %s", r.Kind, r.Name)
				},
				Headers: []string{"NAME", "KIND", "FIELDS", "ENTITY"},
				Row: func(r typeRow) []string {
					entity := ""
					if r.Entity {
						entity = "yes"
					}
					return []string{r.Name, r.Kind, fmt.Sprint(r.Fields), entity}
				},
			})
		},
	}
}

type fieldRow struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Arguments  []string `json:"arguments,omitempty"`
	Deprecated string   `json:"deprecated,omitempty"`
	Stream     bool     `json:"stream,omitempty"`
}

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe TYPE",
		Short: "List the fields of an object, interface or input type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}
			t, err := lookupType(s, args[0])
			if err != nil {
				return err
			}
			c := complexOf(t)
			if c == nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("%s is a %s and has no fields", t.TypeName(), t.Kind()))
			}

			var rows []fieldRow
			for _, f := range c.Fields() {
				row := fieldRow{
					Name:       f.Name,
					Type:       f.WireType().String(),
					Deprecated: f.DeprecationReason,
					Stream:     f.StreamResolver != nil,
				}
				for _, arg := range f.Arguments {
					row.Arguments = append(row.Arguments, argString(arg))
				}
				rows = append(rows, row)
			}
			return render(cmd, a.format, Renderer[fieldRow]{
				Data: rows,
				TextFormat: func(r fieldRow) string {
					if len(r.Arguments) == 0 {
						return fmt.Sprintf("%s: %s", r.Name, r.Type)
					}
					return fmt.Sprintf("%s(%s): %s", r.Name, strings.Join(r.Arguments, ", "), r.Type)
				},
				Headers: []string{"FIELD", "TYPE", "ARGUMENTS", "DEPRECATED"},
				Row: func(r fieldRow) []string {
					return []string{r.Name, r.Type, strings.Join(r.Arguments, ", "), r.Deprecated}
				},
			})
		},
	}
}

func argString(arg *types.Argument) string {
	s := arg.Name + ": " + arg.WireType().String()
	if arg.HasDefault {
		s += fmt.Sprintf(" = %v", arg.DefaultValue)
	}
	return s
}

const maxSuggestionDistance = 5

// lookupType returns the named type or a not-found error suggesting the
// closest name.
func lookupType(s *typegraph.Schema, name string) (types.NamedType, error) {
	if t := s.Type(name); t != nil {
		return t, nil
	}
	var names []string
	for _, t := range s.Types() {
		names = append(names, t.TypeName())
	}
	sort.Strings(names)
	msg := fmt.Sprintf("type %q does not exist in schema", name)
	if suggestion := findClosest(name, names); suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", suggestion)
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msg)
}

func findClosest(input string, candidates []string) string {
	minDist := -1
	closest := ""
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(input, c)
		if minDist == -1 || dist < minDist {
			minDist = dist
			closest = c
		}
	}
	if minDist > maxSuggestionDistance {
		return ""
	}
	return closest
}

func complexOf(t types.NamedType) *types.Complex {
	switch t := t.(type) {
	case *types.Object:
		return &t.Complex
	case *types.Interface:
		return &t.Complex
	case *types.InputObject:
		return &t.Complex
	}
	return nil
}

func render[T any](cmd *cobra.Command, format Format, r Renderer[T]) error {
	out, err := r.Render(format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
