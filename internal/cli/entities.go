package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/federation"
	"github.com/graph-gophers/typegraph/types"
)

type entityRow struct {
	Index    int                    `json:"index"`
	Typename string                 `json:"typename"`
	Type     string                 `json:"type,omitempty"`
	Data     map[string]interface{} `json:"data"`
	Errors   []string               `json:"errors,omitempty"`
}

func newEntitiesCommand(a *app) *cobra.Command {
	var failOnError bool
	cmd := &cobra.Command{
		Use:   "entities [FILE]",
		Short: "Resolve a JSON list of entity representations",
		Long: `Resolve a JSON list of entity representations, read from FILE or from
standard input, the way a gateway resolves _entities. Every representation
resolves independently; the output keeps the input order.`,
		Example: `  echo '[{"__typename":"Book","id":"1"},{"__typename":"Media","id":"m1"}]' | typegraph entities -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			reps, err := parseRepresentations(raw)
			if err != nil {
				return err
			}
			s, err := a.schema()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results := s.ResolveEntities(ctx, reps)
			rows := make([]entityRow, len(results))
			failed := 0
			for i, res := range results {
				rows[i] = entityRow{Index: i, Typename: reps[i].Typename}
				if res.Err != nil {
					rows[i].Errors = append(rows[i].Errors, res.Err.Message)
					failed++
					continue
				}
				if res.Value == nil {
					continue
				}
				rows[i].Type = res.Type.Name
				rows[i].Data, rows[i].Errors = project(ctx, s, res.Type, res.Value)
			}
			a.logger.Debug().Int("count", len(reps)).Int("failed", failed).Msg("entities resolved")

			if err := render(cmd, a.format, Renderer[entityRow]{
				Data:       rows,
				TextFormat: entityText,
				Headers:    []string{"#", "TYPENAME", "TYPE", "DATA", "ERRORS"},
				Row: func(r entityRow) []string {
					errs := ""
					if len(r.Errors) > 0 {
						errs = errorStyle.Render(strings.Join(r.Errors, "; "))
					}
					return []string{fmt.Sprint(r.Index), r.Typename, r.Type, dataString(r.Data), errs}
				},
			}); err != nil {
				return err
			}
			if failOnError && failed > 0 {
				return errbuilder.New().
					WithCode(errbuilder.CodeNotFound).
					WithMsg(fmt.Sprintf("%d of %d representations failed", failed, len(reps)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit with a non-zero status when a representation fails")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read representations").
			WithCause(err)
	}
	return raw, nil
}

// parseRepresentations accepts a JSON list or an object holding the list
// under "representations", as in the variables of an _entities query.
func parseRepresentations(raw []byte) ([]federation.Representation, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("representations are not valid JSON").
			WithCause(err)
	}
	if m, ok := doc.(map[string]interface{}); ok {
		doc = m["representations"]
	}
	list, ok := doc.([]interface{})
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("representations must be a JSON list")
	}
	reps, err := federation.ParseRepresentations(list)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid representation").
			WithCause(err)
	}
	return reps, nil
}

// project resolves the leaf fields without required arguments of a resolved
// entity.
func project(ctx context.Context, s *typegraph.Schema, obj *types.Object, value interface{}) (map[string]interface{}, []string) {
	data := make(map[string]interface{})
	var errs []string
	for _, f := range obj.Fields() {
		if !isLeaf(f.WireType()) || hasRequiredArgs(f) {
			continue
		}
		v, qErr := s.ResolveField(ctx, obj.Name, f.Name, value, nil)
		if qErr != nil {
			errs = append(errs, qErr.Message)
			continue
		}
		data[f.Name] = v
	}
	return data, errs
}

func isLeaf(t types.Type) bool {
	switch types.Unwrap(t).(type) {
	case *types.Scalar, *types.Enum:
		return true
	}
	return false
}

func hasRequiredArgs(f *types.Field) bool {
	for _, a := range f.Arguments {
		if types.IsNonNull(a.WireType()) && !a.HasDefault {
			return true
		}
	}
	return false
}

func entityText(r entityRow) string {
	switch {
	case len(r.Errors) > 0 && r.Data == nil:
		return fmt.Sprintf("%d %s error: %s", r.Index, r.Typename, strings.Join(r.Errors, "; "))
	case r.Data == nil:
		return fmt.Sprintf("%d %s null", r.Index, r.Typename)
	}
	return fmt.Sprintf("%d %s %s", r.Index, r.Type, dataString(r.Data))
}

// dataString renders the projected fields sorted by name.
func dataString(data map[string]interface{}) string {
	if data == nil {
		return "null"
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}
