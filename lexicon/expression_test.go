package lexicon

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poiesic/hownet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression(t *testing.T) {
	t.Run("single sememe", func(t *testing.T) {
		root, err := ParseExpression("{human|人}")
		require.NoError(t, err)

		want := &core.ExprNode{
			Kind: core.NodeRoot,
			Role: core.RoleSense,
			Children: []*core.ExprNode{
				{Kind: core.NodeSememe, Sememe: "human|人"},
			},
		}
		if diff := cmp.Diff(want, root); diff != "" {
			t.Errorf("ParseExpression() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("roles and nesting", func(t *testing.T) {
		root, err := ParseExpression(`{tree|树:HostOf={fruit|水果},{reproduce|生殖:ResultEvent={fruit|水果},agent={~}}}`)
		require.NoError(t, err)

		want := &core.ExprNode{
			Kind: core.NodeRoot,
			Role: core.RoleSense,
			Children: []*core.ExprNode{
				{
					Kind:   core.NodeSememe,
					Sememe: "tree|树",
					Children: []*core.ExprNode{
						{Kind: core.NodeSememe, Sememe: "fruit|水果", Role: core.RoleHostOf},
						{
							Kind:   core.NodeSememe,
							Sememe: "reproduce|生殖",
							Role:   core.RoleAgent,
							Children: []*core.ExprNode{
								{Kind: core.NodeSememe, Sememe: "fruit|水果", Role: core.RoleResultEvent},
							},
						},
					},
				},
			},
		}
		if diff := cmp.Diff(want, root); diff != "" {
			t.Errorf("ParseExpression() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tilde role overrides the item role", func(t *testing.T) {
		root, err := ParseExpression("{drink|喝:patient={water|水:instrument={~}}}")
		require.NoError(t, err)
		water := root.Children[0].Children[0]
		assert.Equal(t, core.SememeID("water|水"), water.Sememe)
		assert.Equal(t, core.RoleInstrument, water.Role)
		assert.Empty(t, water.Children)
	})

	t.Run("multiple definitions and remark", func(t *testing.T) {
		root, err := ParseExpression("{place|地方:domain={city|市}} ; {place|地方:domain={county|县}} RMK=note")
		require.NoError(t, err)
		require.Len(t, root.Children, 2)
		assert.Equal(t, "{place|地方:domain={city|市}};{place|地方:domain={county|县}}", root.Canonical())
	})

	t.Run("placeholders and literals", func(t *testing.T) {
		root, err := ParseExpression(`{name|名称:content="Beijing",{?},{$}}`)
		require.NoError(t, err)
		children := root.Children[0].Children
		require.Len(t, children, 3)
		assert.Equal(t, core.NodeLiteral, children[0].Kind)
		assert.Equal(t, "Beijing", children[0].Text)
		assert.Equal(t, core.RoleContent, children[0].Role)
		assert.Equal(t, core.NodePlaceholder, children[1].Kind)
		assert.Equal(t, "?", children[1].Text)
		assert.Equal(t, "$", children[2].Text)
	})

	t.Run("lowercase role tags", func(t *testing.T) {
		root, err := ParseExpression("{a|甲:hostof={b|乙}}")
		require.NoError(t, err)
		assert.Equal(t, core.RoleHostOf, root.Children[0].Children[0].Role)
	})

	t.Run("trailing separator", func(t *testing.T) {
		root, err := ParseExpression("{a|甲};")
		require.NoError(t, err)
		assert.Len(t, root.Children, 1)
	})
}

func TestParseExpressionErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
		offset int
	}{
		{name: "empty", raw: "   ", reason: "no definition", offset: 0},
		{name: "remark only", raw: "RMK=x", reason: "no definition", offset: 0},
		{name: "missing close", raw: "{a|甲:agent={b|乙}", reason: "unbalanced brackets", offset: len("{a|甲:agent={b|乙}")},
		{name: "missing open", raw: "a|甲}", reason: "expected '{'", offset: 0},
		{name: "empty identifier", raw: "{:agent={b|乙}}", reason: "empty identifier", offset: 1},
		{name: "unknown role", raw: "{a|甲:flavour={b|乙}}", reason: "unknown role tag flavour", offset: len("{a|甲:")},
		{name: "unterminated quote", raw: `{a|甲:content="abc}`, reason: "unbalanced quotes", offset: len(`{a|甲:content=`)},
		{name: "missing separator", raw: "{a|甲}{b|乙}", reason: "expected ';'", offset: len("{a|甲}")},
		{name: "bare value", raw: "{a|甲:agent=b|乙}", reason: "expected expression or quoted text", offset: len("{a|甲:agent=")},
		{name: "missing equals", raw: "{a|甲:b|乙}", reason: "expected '='", offset: len("{a|甲:b|乙")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpression(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrParse))

			var pe *core.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Contains(t, pe.Reason, tt.reason)
			assert.Equal(t, tt.offset, pe.Offset)
			assert.Equal(t, tt.raw, pe.Value)
		})
	}
}
