package similarity

import (
	"testing"

	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
	"github.com/poiesic/hownet/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureSememes = []string{
	"entity|万物", "thing|万物类", "physical|物质", "animate|生物", "AnimalHuman|动物",
	"human|人", "beast|走兽", "plant|植物", "tree|树", "fruit|水果", "food|食物",
	"event|事件", "act|行动", "eat|吃", "drink|喝", "attribute|属性", "color|颜色",
	"red|红", "island|岛",
}

var fixtureHierarchy = [][2]string{
	{"thing|万物类", "entity|万物"},
	{"physical|物质", "thing|万物类"},
	{"animate|生物", "physical|物质"},
	{"AnimalHuman|动物", "animate|生物"},
	{"human|人", "AnimalHuman|动物"},
	{"beast|走兽", "AnimalHuman|动物"},
	{"plant|植物", "animate|生物"},
	{"tree|树", "plant|植物"},
	{"food|食物", "physical|物质"},
	{"fruit|水果", "food|食物"},
	{"event|事件", "entity|万物"},
	{"act|行动", "event|事件"},
	{"eat|吃", "act|行动"},
	{"drink|喝", "act|行动"},
	{"attribute|属性", "entity|万物"},
	{"color|颜色", "attribute|属性"},
}

var fixtureSenses = []*core.SenseRecord{
	{SenseID: "1", WordEn: "person", WordZh: "人", POS: "noun", SememeExpression: "{human|人}"},
	{SenseID: "2", WordEn: "man", WordZh: "男人", POS: "noun", SememeExpression: "{human|人:modifier={male|男}}"},
	{SenseID: "3", WordEn: "apple", WordZh: "苹果", POS: "noun", SememeExpression: "{fruit|水果}"},
	{SenseID: "4", WordEn: "apple", WordZh: "苹果树", POS: "noun", SememeExpression: "{tree|树:HostOf={fruit|水果}}"},
	{SenseID: "5", WordEn: "pear", WordZh: "梨", POS: "noun", SememeExpression: "{fruit|水果}"},
	{SenseID: "6", WordEn: "eat", WordZh: "吃", POS: "verb", SememeExpression: "{eat|吃:patient={food|食物},agent={AnimalHuman|动物}}"},
	{SenseID: "7", WordEn: "drink", WordZh: "喝", POS: "verb", SememeExpression: "{drink|喝:patient={food|食物},agent={AnimalHuman|动物}}"},
	{SenseID: "8", WordEn: "wolf", WordZh: "狼", POS: "noun", SememeExpression: "{beast|走兽}"},
	{SenseID: "9", WordEn: "red", WordZh: "红", POS: "adj", SememeExpression: "{color|颜色:host={physical|物质}};{red|红}"},
	{SenseID: "10", WordEn: "cook", WordZh: "厨师", POS: "noun", SememeExpression: "{human|人:{eat|吃},domain={food|食物}}"},
	{SenseID: "11", WordEn: "hello", WordZh: "你好", POS: "expr", SememeExpression: `{?:content="hello"}`},
	{SenseID: "12", WordEn: "Ceylon", WordZh: "锡兰", POS: "noun", SememeExpression: "{island|岛}"},
	{SenseID: "13", WordEn: "what", WordZh: "什么", POS: "pron", SememeExpression: "{?}"},
}

func loadFixture(t *testing.T) *graph.Graph {
	t.Helper()
	var sememes []*core.SememeRecord
	for _, id := range fixtureSememes {
		sememes = append(sememes, &core.SememeRecord{SememeID: id})
	}
	var relations []*core.RelationRecord
	for _, e := range fixtureHierarchy {
		relations = append(relations, &core.RelationRecord{SrcID: e[0], RelationType: "hypernym", DstID: e[1], EntityKind: "sememe"})
	}
	loader, err := lexicon.NewLoader()
	require.NoError(t, err)
	g, err := loader.Load(sememes, fixtureSenses, relations)
	require.NoError(t, err)
	return g
}

func newEngine(t *testing.T, g *graph.Graph, opts ...config.Option) *Engine {
	t.Helper()
	e, err := NewEngine(g, WithConfig(config.NewConfig(opts...)))
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func chainGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	ids := []string{"a|甲", "b|乙", "c|丙", "d|丁", "e|戊", "f|己"}[:n]
	var sememes []*core.SememeRecord
	var relations []*core.RelationRecord
	var senses []*core.SenseRecord
	for i, id := range ids {
		sememes = append(sememes, &core.SememeRecord{SememeID: id})
		senses = append(senses, &core.SenseRecord{SenseID: id, WordEn: id[:1], POS: "noun", SememeExpression: "{" + id + "}"})
		if i > 0 {
			relations = append(relations, &core.RelationRecord{SrcID: ids[i-1], RelationType: "hypernym", DstID: id, EntityKind: "sememe"})
		}
	}
	loader, err := lexicon.NewLoader()
	require.NoError(t, err)
	g, err := loader.Load(sememes, senses, relations)
	require.NoError(t, err)
	return g
}

func TestWorkedExample(t *testing.T) {
	g := chainGraph(t, 3)
	e := newEngine(t, g, config.WithAlpha(1))

	d, ok := e.Distance("a|甲", "c|丙")
	require.True(t, ok)
	assert.Equal(t, 2, d)
	assert.InDelta(t, 1.0/3.0, e.SememeSimilarity("a|甲", "c|丙"), 1e-12)
	assert.InDelta(t, 1.0/3.0, e.Similarity("a", "c", nil, core.LangEn), 1e-12)
	assert.InDelta(t, 0.5, e.Similarity("a", "b", nil, core.LangEn), 1e-12)
}

func TestDistance(t *testing.T) {
	g := chainGraph(t, 6)

	t.Run("within bound", func(t *testing.T) {
		e := newEngine(t, g)
		d, ok := e.Distance("a|甲", "f|己")
		require.True(t, ok)
		assert.Equal(t, 5, d)

		d, ok = e.Distance("f|己", "a|甲")
		require.True(t, ok)
		assert.Equal(t, 5, d)

		d, ok = e.Distance("c|丙", "c|丙")
		require.True(t, ok)
		assert.Equal(t, 0, d)
	})

	t.Run("each side limited to max depth", func(t *testing.T) {
		e := newEngine(t, g, config.WithMaxDepth(2))
		d, ok := e.Distance("a|甲", "e|戊")
		require.True(t, ok)
		assert.Equal(t, 4, d)

		_, ok = e.Distance("a|甲", "f|己")
		assert.False(t, ok)
		assert.Equal(t, 0.0, e.SememeSimilarity("a|甲", "f|己"))
	})

	t.Run("zero depth", func(t *testing.T) {
		e := newEngine(t, g, config.WithMaxDepth(0))
		_, ok := e.Distance("a|甲", "b|乙")
		assert.False(t, ok)
		assert.Equal(t, 1.0, e.SememeSimilarity("b|乙", "b|乙"))
	})

	t.Run("unknown sememe", func(t *testing.T) {
		e := newEngine(t, g)
		_, ok := e.Distance("a|甲", "zzz|无")
		assert.False(t, ok)
	})

	t.Run("siblings meet in the middle", func(t *testing.T) {
		e := newEngine(t, loadFixture(t))
		d, ok := e.Distance("human|人", "beast|走兽")
		require.True(t, ok)
		assert.Equal(t, 2, d)

		d, ok = e.Distance("human|人", "fruit|水果")
		require.True(t, ok)
		assert.Equal(t, 5, d)

		_, ok = e.Distance("human|人", "island|岛")
		assert.False(t, ok)
	})
}

func TestDistanceMatchesTable(t *testing.T) {
	g := loadFixture(t)
	for _, depth := range []int{0, 1, 2, 3, 10} {
		e := newEngine(t, g, config.WithMaxDepth(depth))
		for a := range g.AllSememes() {
			oa, _ := g.SememeOrdinal(a.ID)
			table := distanceTable(g, oa, 2*depth)
			for b := range g.AllSememes() {
				ob, _ := g.SememeOrdinal(b.ID)
				d, ok := e.Distance(a.ID, b.ID)
				td, tok := table[ob]
				assert.Equal(t, tok, ok, "depth %d %s-%s", depth, a.ID, b.ID)
				assert.Equal(t, td, d, "depth %d %s-%s", depth, a.ID, b.ID)
			}
		}
	}
}

func TestSenseSimilarityProperties(t *testing.T) {
	g := loadFixture(t)
	e := newEngine(t, g)

	var senses []*core.Sense
	for _, r := range fixtureSenses {
		s, ok := g.Sense(core.SenseID(r.SenseID))
		require.True(t, ok)
		senses = append(senses, s)
	}

	t.Run("self similarity is one", func(t *testing.T) {
		for _, s := range senses {
			assert.Equal(t, 1.0, e.SenseSimilarity(s, s), "sense %s", s.ID)
		}
	})

	t.Run("symmetric and bounded", func(t *testing.T) {
		for _, a := range senses {
			for _, b := range senses {
				ab := e.SenseSimilarity(a, b)
				assert.Equal(t, ab, e.SenseSimilarity(b, a), "%s/%s", a.ID, b.ID)
				assert.GreaterOrEqual(t, ab, 0.0)
				assert.LessOrEqual(t, ab, 1.0)
			}
		}
	})
}

func TestRoleWeighting(t *testing.T) {
	g := loadFixture(t)
	e := newEngine(t, g)
	sense := func(id core.SenseID) *core.Sense {
		s, ok := g.Sense(id)
		require.True(t, ok)
		return s
	}

	t.Run("same head, extra role on one side", func(t *testing.T) {
		// person {human} vs cook {human:{eat},domain={food}}:
		// first independent matches, second and symbolic are one-sided.
		w := e.Config().RoleWeights
		want := w[RoleFirstIndependent] / (w[RoleFirstIndependent] + w[RoleSecondIndependent] + w[RoleSymbolic])
		assert.InDelta(t, want, e.SenseSimilarity(sense("1"), sense("10")), 1e-12)
	})

	t.Run("unresolved role sememes are ignored", func(t *testing.T) {
		// man carries modifier={male|男}, which is not a loaded sememe
		assert.Equal(t, 1.0, e.SenseSimilarity(sense("1"), sense("2")))
	})

	t.Run("no bound roles", func(t *testing.T) {
		assert.Equal(t, 0.0, e.SenseSimilarity(sense("11"), sense("13")))
		assert.Equal(t, 1.0, e.SenseSimilarity(sense("11"), sense("11")))
		assert.Equal(t, 0.0, e.SenseSimilarity(sense("11"), sense("1")))
	})

	t.Run("disconnected heads", func(t *testing.T) {
		assert.Equal(t, 0.0, e.SenseSimilarity(sense("1"), sense("12")))
	})

	t.Run("verbs share roles", func(t *testing.T) {
		eat, drink := sense("6"), sense("7")
		cfg := e.Config()
		headSim := cfg.Alpha / (cfg.Alpha + 2)
		w := cfg.RoleWeights
		want := (w[RoleFirstIndependent]*headSim + w[RoleRelational]) / (w[RoleFirstIndependent] + w[RoleRelational])
		assert.InDelta(t, want, e.SenseSimilarity(eat, drink), 1e-12)
	})
}

func TestExtractRoles(t *testing.T) {
	g := loadFixture(t)
	roles := func(id core.SenseID) roleSet {
		s, ok := g.Sense(id)
		require.True(t, ok)
		return extractRoles(g, s)
	}

	r := roles("10")
	assert.Equal(t, core.SememeID("human|人"), r.ids[RoleFirstIndependent])
	assert.Equal(t, core.SememeID("eat|吃"), r.ids[RoleSecondIndependent])
	assert.False(t, r.ok[RoleRelational])
	assert.Equal(t, core.SememeID("food|食物"), r.ids[RoleSymbolic])

	r = roles("9")
	assert.Equal(t, core.SememeID("color|颜色"), r.ids[RoleFirstIndependent])
	assert.Equal(t, core.SememeID("red|红"), r.ids[RoleSecondIndependent])
	assert.Equal(t, core.SememeID("physical|物质"), r.ids[RoleSymbolic])

	r = roles("6")
	assert.Equal(t, core.SememeID("food|食物"), r.ids[RoleRelational])
	assert.False(t, r.ok[RoleSecondIndependent])

	r = roles("11")
	assert.Equal(t, [4]bool{}, r.ok)
	assert.Equal(t, `{?:content="hello"}`, r.canonical)
}

func TestWordSimilarity(t *testing.T) {
	g := loadFixture(t)
	e := newEngine(t, g)
	noun := core.POSNoun
	verb := core.POSVerb

	assert.Equal(t, 1.0, e.Similarity("apple", "pear", nil, core.LangEn))
	assert.Equal(t, 1.0, e.Similarity("苹果", "梨", nil, core.LangZh))
	assert.Equal(t, 0.0, e.Similarity("apple", "unicorn", nil, core.LangEn))
	assert.Equal(t, 0.0, e.Similarity("eat", "drink", &noun, core.LangEn))
	assert.Greater(t, e.Similarity("eat", "drink", &verb, core.LangEn), 0.5)
	assert.Greater(t, e.Similarity("person", "wolf", nil, core.LangAll), e.Similarity("person", "apple", nil, core.LangAll))
}

func TestNewEngineErrors(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrGraphRequired)

	g := chainGraph(t, 2)
	_, err = NewEngine(g, WithConfig(config.NewConfig(config.WithAlpha(-1))))
	assert.Error(t, err)

	e, err := NewEngine(g, WithConfig(nil), WithLogger(nil), WithRecorder(nil))
	require.NoError(t, err)
	e.Release()
	e.Release()
}
