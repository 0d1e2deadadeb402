package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/tournevent/emc/internal/graphql"
	"github.com/tournevent/emc/internal/telemetry"
)

// operation is the selected operation of a GraphQL document, reduced to
// its top-level fields.
type operation struct {
	kind   ast.Operation
	fields []*ast.Field
}

// parseOperation parses query and selects the operation to run. A
// document with several operations needs an operation name. Fragments
// are not supported at the top level.
func parseOperation(query, name string) (*operation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("missing query")
	}

	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	if name == "" && len(doc.Operations) > 1 {
		return nil, errors.New("operationName is required when the document has several operations")
	}
	def := doc.Operations.ForName(name)
	if def == nil {
		return nil, fmt.Errorf("unknown operation %q", name)
	}
	if def.Operation != ast.Query && def.Operation != ast.Mutation {
		return nil, fmt.Errorf("unsupported operation type %q", def.Operation)
	}

	op := &operation{kind: def.Operation}
	for _, sel := range def.SelectionSet {
		field, ok := sel.(*ast.Field)
		if !ok {
			return nil, errors.New("fragments are not supported at the top level")
		}
		op.fields = append(op.fields, field)
	}
	if len(op.fields) == 0 {
		return nil, errors.New("empty selection set")
	}
	return op, nil
}

// execute resolves every top-level field. A failing field keeps the partial
// value its resolver returned (null when none) and is reported in errors
// with its error type as extension code.
func (s *Server) execute(ctx context.Context, op *operation, vars map[string]any) graphQLResponse {
	resp := graphQLResponse{Data: make(map[string]any, len(op.fields))}

	for _, field := range op.fields {
		key := field.Alias
		if key == "" {
			key = field.Name
		}

		val, err := s.resolveField(ctx, op.kind, field, vars)
		resp.Data[key] = val
		if err != nil {
			resp.Errors = append(resp.Errors, graphQLError{
				Message:    err.Error(),
				Path:       []string{key},
				Extensions: map[string]any{"code": telemetry.ErrorType(err)},
			})
		}
	}
	return resp
}

func (s *Server) resolveField(ctx context.Context, kind ast.Operation, field *ast.Field, vars map[string]any) (any, error) {
	switch {
	case kind == ast.Query && field.Name == "health":
		return s.resolver.Health(ctx), nil

	case kind == ast.Query && field.Name == "pallets":
		return s.resolver.Pallets(ctx), nil

	case kind == ast.Query && field.Name == "reasons":
		var translations map[string]string
		if err := decodeArgument(field, "translations", vars, &translations); err != nil {
			return nil, err
		}
		return s.resolver.Reasons(ctx, translations), nil

	case kind == ast.Query && field.Name == "quotation":
		var input graphql.QuotationInput
		if err := decodeArgument(field, "input", vars, &input); err != nil {
			return nil, err
		}
		return s.resolver.Quotation(ctx, input)

	case kind == ast.Mutation && field.Name == "order":
		var input graphql.OrderInput
		if err := decodeArgument(field, "input", vars, &input); err != nil {
			return nil, err
		}
		return s.resolver.Order(ctx, input)

	default:
		return nil, fmt.Errorf("unknown %s field %q", kind, field.Name)
	}
}

// decodeArgument decodes the named argument, inline or from variables,
// into out. A missing argument leaves out untouched.
func decodeArgument(field *ast.Field, name string, vars map[string]any, out any) error {
	arg := field.Arguments.ForName(name)
	if arg == nil {
		return nil
	}
	val, err := arg.Value.Value(vars)
	if err != nil {
		return fmt.Errorf("argument %s: %w", name, err)
	}
	return graphql.Decode(val, out)
}
