package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/poiesic/hownet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sememeNode(id string, role core.Role, children ...*core.ExprNode) *core.ExprNode {
	return &core.ExprNode{Kind: core.NodeSememe, Sememe: core.SememeID(id), Role: role, Children: children}
}

func expression(defs ...*core.ExprNode) *core.ExprNode {
	return &core.ExprNode{Kind: core.NodeRoot, Role: core.RoleSense, Children: defs}
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder()
	for _, id := range []string{"entity|万物", "animate|生物", "human|人", "AnimalHuman|动物", "tree|树", "fruit|水果"} {
		require.NoError(t, b.AddSememe(&core.Sememe{ID: core.SememeID(id)}))
	}

	senses := []*core.Sense{
		{ID: "1", WordEn: "person", WordZh: "人", POS: core.POSNoun, SynsetID: "bn:00046516n", Expression: expression(sememeNode("human|人", core.RoleNone))},
		{ID: "2", WordEn: "apple", WordZh: "苹果", POS: core.POSNoun, SynsetID: "bn:00005054n", Expression: expression(sememeNode("fruit|水果", core.RoleNone))},
		{ID: "3", WordEn: "apple", WordZh: "苹果树", POS: core.POSNoun, Expression: expression(sememeNode("tree|树", core.RoleNone, sememeNode("fruit|水果", core.RoleHostOf)))},
		{ID: "4", WordEn: "human", WordZh: "人", POS: core.POSAdj, SynsetID: "bn:00046516n", Expression: expression(sememeNode("human|人", core.RoleNone))},
	}
	for _, s := range senses {
		require.NoError(t, b.AddSense(s))
	}

	edges := [][2]string{
		{"animate|生物", "entity|万物"},
		{"AnimalHuman|动物", "animate|生物"},
		{"human|人", "AnimalHuman|动物"},
		{"tree|树", "animate|生物"},
	}
	for _, e := range edges {
		require.NoError(t, b.AddRelation(core.EntitySememe, e[0], core.RelationHypernym, e[1]))
	}
	require.NoError(t, b.AddRelation(core.EntitySememe, "fruit|水果", core.RelationHyponym, "tree|树"))
	require.NoError(t, b.AddRelation(core.EntitySememe, "fruit|水果", core.RelationPart, "tree|树"))
	require.NoError(t, b.AddRelation(core.EntitySense, "1", core.RelationSynonym, "4"))
	return b.Build()
}

func senseIDs(senses []*core.Sense) []core.SenseID {
	out := make([]core.SenseID, len(senses))
	for i, s := range senses {
		out[i] = s.ID
	}
	return out
}

func TestSenses(t *testing.T) {
	g := testGraph(t)
	noun := core.POSNoun

	t.Run("english in insertion order", func(t *testing.T) {
		assert.Equal(t, []core.SenseID{"2", "3"}, senseIDs(g.Senses("apple", nil, core.LangEn)))
	})

	t.Run("chinese", func(t *testing.T) {
		assert.Equal(t, []core.SenseID{"1", "4"}, senseIDs(g.Senses("人", nil, core.LangZh)))
	})

	t.Run("pos filter", func(t *testing.T) {
		assert.Equal(t, []core.SenseID{"1"}, senseIDs(g.Senses("人", &noun, core.LangZh)))
	})

	t.Run("all languages de-duplicated", func(t *testing.T) {
		b := NewBuilder()
		require.NoError(t, b.AddSense(&core.Sense{ID: "a", WordEn: "OK", WordZh: "OK"}))
		require.NoError(t, b.AddSense(&core.Sense{ID: "b", WordZh: "OK"}))
		g := b.Build()
		assert.Equal(t, []core.SenseID{"a", "b"}, senseIDs(g.Senses("OK", nil, core.LangAll)))
	})

	t.Run("absent word", func(t *testing.T) {
		assert.Empty(t, g.Senses("unicorn", nil, core.LangAll))
		assert.False(t, g.Has("unicorn", core.LangAll))
		assert.True(t, g.Has("苹果", core.LangZh))
		assert.False(t, g.Has("苹果", core.LangEn))
	})
}

func TestLookupByID(t *testing.T) {
	g := testGraph(t)

	s, ok := g.Sememe("human|人")
	require.True(t, ok)
	assert.Equal(t, core.SememeID("human|人"), s.ID)

	_, ok = g.Sememe("ghost|鬼")
	assert.False(t, ok)

	sense, ok := g.Sense("3")
	require.True(t, ok)
	assert.Equal(t, "苹果树", sense.WordZh)

	_, ok = g.Sense("99")
	assert.False(t, ok)
}

func TestRelations(t *testing.T) {
	g := testGraph(t)

	t.Run("all edge types in insertion order", func(t *testing.T) {
		rels := g.Relations(core.EntitySememe, "fruit|水果", nil, core.DirectionOut)
		assert.Equal(t, []core.Relation{
			{Type: core.RelationHyponym, Target: "tree|树"},
			{Type: core.RelationPart, Target: "tree|树"},
		}, rels)
	})

	t.Run("filtered", func(t *testing.T) {
		part := core.RelationPart
		rels := g.Relations(core.EntitySememe, "fruit|水果", &part, core.DirectionOut)
		assert.Equal(t, []core.Relation{{Type: core.RelationPart, Target: "tree|树"}}, rels)
	})

	t.Run("sense edges", func(t *testing.T) {
		rels := g.Relations(core.EntitySense, "1", nil, core.DirectionOut)
		assert.Equal(t, []core.Relation{{Type: core.RelationSynonym, Target: "4"}}, rels)
		assert.Empty(t, g.Relations(core.EntitySense, "4", nil, core.DirectionOut))
	})

	t.Run("incoming edges", func(t *testing.T) {
		rels := g.Relations(core.EntitySememe, "tree|树", nil, core.DirectionIn)
		assert.Equal(t, []core.Relation{
			{Type: core.RelationHyponym, Target: "fruit|水果", Incoming: true},
			{Type: core.RelationPart, Target: "fruit|水果", Incoming: true},
		}, rels)

		rels = g.Relations(core.EntitySense, "4", nil, core.DirectionIn)
		assert.Equal(t, []core.Relation{{Type: core.RelationSynonym, Target: "1", Incoming: true}}, rels)
	})

	t.Run("both directions list outgoing first", func(t *testing.T) {
		hypernym := core.RelationHypernym
		rels := g.Relations(core.EntitySememe, "animate|生物", &hypernym, core.DirectionBoth)
		assert.Equal(t, []core.Relation{
			{Type: core.RelationHypernym, Target: "entity|万物"},
			{Type: core.RelationHypernym, Target: "AnimalHuman|动物", Incoming: true},
			{Type: core.RelationHypernym, Target: "tree|树", Incoming: true},
		}, rels)
	})

	t.Run("unknown entity", func(t *testing.T) {
		assert.Empty(t, g.Relations(core.EntitySememe, "ghost|鬼", nil, core.DirectionBoth))
		assert.Empty(t, g.Relations(core.EntityKind(9), "1", nil, core.DirectionOut))
	})

	t.Run("sememe pair", func(t *testing.T) {
		assert.Equal(t, []core.RelationType{core.RelationHyponym, core.RelationPart}, g.SememeRelations("fruit|水果", "tree|树"))
		assert.Empty(t, g.SememeRelations("tree|树", "human|人"))
	})

	t.Run("sememe pair in both directions", func(t *testing.T) {
		assert.Empty(t, g.SememeRelationsDirected("tree|树", "fruit|水果", core.DirectionOut))
		assert.Equal(t, []core.Relation{
			{Type: core.RelationHyponym, Target: "fruit|水果", Incoming: true},
			{Type: core.RelationPart, Target: "fruit|水果", Incoming: true},
		}, g.SememeRelationsDirected("tree|树", "fruit|水果", core.DirectionBoth))
		assert.Equal(t, []core.Relation{
			{Type: core.RelationHyponym, Target: "tree|树"},
			{Type: core.RelationPart, Target: "tree|树"},
		}, g.SememeRelationsDirected("fruit|水果", "tree|树", core.DirectionBoth))
	})
}

func TestSensesBySememe(t *testing.T) {
	g := testGraph(t)

	assert.Equal(t, []core.SenseID{"2", "3"}, senseIDs(g.SensesBySememe("fruit|水果")))
	assert.Equal(t, []core.SenseID{"1", "4"}, senseIDs(g.SensesBySememe("human|人")))
	assert.Empty(t, g.SensesBySememe("entity|万物"))
	assert.Empty(t, g.SensesBySememe("ghost|鬼"))

	t.Run("matched by search", func(t *testing.T) {
		// "hUMAN" matches human|人 and AnimalHuman|动物; only the first is used.
		assert.Equal(t, []core.SenseID{"1", "4"}, senseIDs(g.SensesBySememeMatch("hUMAN")))
		assert.Equal(t, []core.SenseID{"3"}, senseIDs(g.SensesBySememeMatch("树")))
		// tree|树 and fruit|水果 both reach sense 3, which is listed once.
		assert.Equal(t, []core.SenseID{"2", "3"}, senseIDs(g.SensesBySememeMatch("r")))
		assert.Empty(t, g.SensesBySememeMatch("entity"))
		assert.Empty(t, g.SensesBySememeMatch(" "))
	})
}

func TestSensesBySynset(t *testing.T) {
	g := testGraph(t)

	assert.Equal(t, []core.SenseID{"1", "4"}, senseIDs(g.SensesBySynset("bn:00046516n")))
	assert.Equal(t, []core.SenseID{"2"}, senseIDs(g.SensesBySynset("bn:00005054n")))
	assert.Empty(t, g.SensesBySynset(""))
	assert.Empty(t, g.SensesBySynset("bn:00000000n"))
}

func TestSenseSynonyms(t *testing.T) {
	g := testGraph(t)

	assert.Equal(t, []core.SenseID{"1", "4"}, senseIDs(g.SenseSynonyms("4")))
	assert.Equal(t, []core.SenseID{"2"}, senseIDs(g.SenseSynonyms("2")))
	assert.Empty(t, g.SenseSynonyms("99"))

	t.Run("sememe order and repetition do not matter", func(t *testing.T) {
		b := NewBuilder()
		for _, id := range []string{"a|甲", "b|乙", "c|丙"} {
			require.NoError(t, b.AddSememe(&core.Sememe{ID: core.SememeID(id)}))
		}
		senses := []*core.Sense{
			{ID: "1", Expression: expression(sememeNode("a|甲", core.RoleNone, sememeNode("b|乙", core.RoleAgent)))},
			{ID: "2", Expression: expression(sememeNode("b|乙", core.RoleNone), sememeNode("a|甲", core.RoleNone, sememeNode("b|乙", core.RolePatient)))},
			{ID: "3", Expression: expression(sememeNode("a|甲", core.RoleNone, sememeNode("c|丙", core.RoleAgent)))},
			{ID: "4", Expression: expression(sememeNode("a|甲", core.RoleNone))},
			{ID: "5"},
			{ID: "6", Expression: expression(&core.ExprNode{Kind: core.NodeUnresolved, Sememe: "ghost|鬼"})},
		}
		for _, s := range senses {
			require.NoError(t, b.AddSense(s))
		}
		g := b.Build()

		assert.Equal(t, []core.SenseID{"1", "2"}, senseIDs(g.SenseSynonyms("1")))
		assert.Equal(t, []core.SenseID{"3"}, senseIDs(g.SenseSynonyms("3")))
		assert.Equal(t, []core.SenseID{"4"}, senseIDs(g.SenseSynonyms("4")))
		assert.Empty(t, g.SenseSynonyms("5"))
		assert.Empty(t, g.SenseSynonyms("6"))
	})
}

func TestWords(t *testing.T) {
	g := testGraph(t)

	assert.Equal(t, []string{"apple", "human", "person"}, g.Words(core.LangEn))
	assert.Equal(t, []string{"人", "苹果", "苹果树"}, g.Words(core.LangZh))

	all := g.Words(core.LangAll)
	assert.Len(t, all, 6)
	assert.True(t, slices.IsSorted(all))

	assert.Equal(t, []string{"苹果", "苹果树"}, g.WordsWithPrefix("苹果", core.LangZh))
	assert.Equal(t, []string{"human"}, g.WordsWithPrefix("h", core.LangEn))
	assert.Equal(t, []string{"apple"}, g.WordsWithPrefix("ap", core.LangAll))
}

func TestSearchSememes(t *testing.T) {
	g := testGraph(t)

	found := g.SearchSememes("ANIM")
	require.Len(t, found, 2)
	assert.Equal(t, core.SememeID("animate|生物"), found[0].ID)
	assert.Equal(t, core.SememeID("AnimalHuman|动物"), found[1].ID)

	assert.Len(t, g.SearchSememes("水果"), 1)
	assert.Empty(t, g.SearchSememes("  "))
}

func TestHierarchy(t *testing.T) {
	g := testGraph(t)
	ord := func(id core.SememeID) Ordinal {
		o, ok := g.SememeOrdinal(id)
		require.True(t, ok)
		return o
	}
	ids := func(ords []Ordinal) []core.SememeID {
		out := make([]core.SememeID, len(ords))
		for i, o := range ords {
			out[i] = g.SememeAt(o).ID
		}
		return out
	}

	t.Run("neighbors are undirected", func(t *testing.T) {
		assert.ElementsMatch(t,
			[]core.SememeID{"entity|万物", "AnimalHuman|动物", "tree|树"},
			ids(g.HierarchyNeighbors(ord("animate|生物"))))
		// part edges are not part of the hierarchy
		assert.ElementsMatch(t,
			[]core.SememeID{"animate|生物", "fruit|水果"},
			ids(g.HierarchyNeighbors(ord("tree|树"))))
	})

	t.Run("expand follows inverse edges", func(t *testing.T) {
		assert.Equal(t, []core.SememeID{"AnimalHuman|动物"}, ids(g.Expand(ord("human|人"), core.RelationHypernym)))
		assert.Equal(t, []core.SememeID{"tree|树"}, ids(g.Expand(ord("fruit|水果"), core.RelationHyponym)))
		// fruit hyponym tree is read as tree hypernym fruit
		assert.ElementsMatch(t,
			[]core.SememeID{"animate|生物", "fruit|水果"},
			ids(g.Expand(ord("tree|树"), core.RelationHypernym)))
		assert.Empty(t, g.Expand(ord("entity|万物"), core.RelationHypernym))
	})
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddSememe(&core.Sememe{ID: "a|甲"}))

	err := b.AddSememe(&core.Sememe{ID: "a|甲"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, b.AddSense(&core.Sense{ID: "1", WordEn: "a"}))
	assert.ErrorIs(t, b.AddSense(&core.Sense{ID: "1", WordEn: "b"}), ErrDuplicateID)

	err = b.AddRelation(core.EntitySememe, "a|甲", core.RelationHypernym, "b|乙")
	var missing *core.MissingReferenceError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "a|甲", missing.From)
	assert.Equal(t, "b|乙", missing.To)
	assert.Equal(t, "b|乙", missing.Missing)
	assert.ErrorIs(t, err, core.ErrMissingReference)

	err = b.AddRelation(core.EntitySememe, "c|丙", core.RelationHypernym, "a|甲")
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "c|丙", missing.From)
	assert.Equal(t, "a|甲", missing.To)
	assert.Equal(t, "c|丙", missing.Missing)
	assert.Equal(t, "hypernym", missing.Relation)

	err = b.AddRelation(core.EntitySense, "2", core.RelationSynonym, "1")
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "2", missing.From)
	assert.Equal(t, "1", missing.To)
	assert.Equal(t, "2", missing.Missing)

	assert.ErrorIs(t, b.AddRelation(core.EntitySememe, "a|甲", core.RelationType(0), "a|甲"), ErrInvalidRelation)

	b.SkipReference()
	g := b.Build()
	assert.Equal(t, 1, g.SkippedReferences())
}

func TestSelfLoopIsNotANeighbor(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddSememe(&core.Sememe{ID: "a|甲"}))
	require.NoError(t, b.AddRelation(core.EntitySememe, "a|甲", core.RelationHypernym, "a|甲"))
	g := b.Build()

	assert.Empty(t, g.HierarchyNeighbors(0))
	assert.Equal(t, []Ordinal{0}, g.Expand(0, core.RelationHypernym))
	assert.Equal(t, 1, g.Stats().SememeEdges)
}

func TestStatsAndFingerprint(t *testing.T) {
	g1 := testGraph(t)
	g2 := testGraph(t)

	stats := g1.Stats()
	assert.Equal(t, 6, stats.Sememes)
	assert.Equal(t, 4, stats.Senses)
	assert.Equal(t, 6, stats.SememeEdges)
	assert.Equal(t, 1, stats.SenseEdges)
	assert.Equal(t, 3, stats.EnglishWords)
	assert.Equal(t, 3, stats.ChineseWords)
	assert.Equal(t, 0, stats.SkippedReferences)

	assert.NotZero(t, g1.Fingerprint())
	assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())
	assert.Equal(t, g1.Fingerprint(), stats.Fingerprint)

	b := NewBuilder()
	require.NoError(t, b.AddSememe(&core.Sememe{ID: "other|别"}))
	assert.NotEqual(t, g1.Fingerprint(), b.Build().Fingerprint())
}

func TestIterators(t *testing.T) {
	g := testGraph(t)

	var sememes []core.SememeID
	for s := range g.AllSememes() {
		sememes = append(sememes, s.ID)
	}
	assert.Len(t, sememes, 6)
	assert.Equal(t, core.SememeID("entity|万物"), sememes[0])
	assert.Equal(t, 6, g.Stats().Sememes)

	count := 0
	for range g.AllSememes() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
