package main

import (
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ledgerengine/internal/canon"
	"ledgerengine/internal/gates"
	"ledgerengine/internal/portstub"
	"ledgerengine/pkg/domain/config"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/domain/ports"
	"ledgerengine/pkg/engine"
	ledgererrors "ledgerengine/pkg/errors"
)

// scenarioRoot is one named hypothesis as written in a scenario file.
type scenarioRoot struct {
	Statement        string   `yaml:"statement"`
	ExclusionClause  string   `yaml:"exclusion_clause"`
	StoryCardinality int      `yaml:"story_cardinality"`
	Components       []string `yaml:"components"`
}

// scenarioOverlap declares a pair's MECE overlap score and discriminator.
type scenarioOverlap struct {
	RootA         string `yaml:"root_a"`
	RootB         string `yaml:"root_b"`
	OverlapScore  string `yaml:"overlap_score"`
	Discriminator string `yaml:"discriminator"`
}

// scenarioEvalFixture is one canned evaluation response, keyed by node
// and (optionally) pair. NodeKey names a root statement and is
// canonicalized before lookup; PairKey is used as given.
type scenarioEvalFixture struct {
	NodeKey string `yaml:"node_key"`
	PairKey string `yaml:"pair_key"`
	P       string `yaml:"p"`
	Rubric  int    `yaml:"rubric_total"`
}

// scenarioDecompFixture is one canned decomposition response: expanding
// RootKey's SlotKey (empty for the root's own template slots) produces
// one child item per entry in Items.
type scenarioDecompFixture struct {
	RootKey string   `yaml:"root_key"`
	SlotKey string   `yaml:"slot_key"`
	Items   []string `yaml:"items"`
}

// scenarioFile is the top-level YAML schema the CLI's run/validate
// subcommands read.
type scenarioFile struct {
	Roots           []scenarioRoot          `yaml:"roots"`
	Overlaps        []scenarioOverlap       `yaml:"overlaps"`
	TemplateSlots   []string                `yaml:"template_slots"`
	CreditBudget    int                     `yaml:"credit_budget"`
	EvalFixtures    []scenarioEvalFixture   `yaml:"eval_fixtures"`
	DecompFixtures  []scenarioDecompFixture `yaml:"decomp_fixtures"`
}

func loadScenario(path string) (scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenarioFile{}, ledgererrors.Wrap(err, "reading scenario file")
	}
	var sf scenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return scenarioFile{}, ledgererrors.Wrap(err, "parsing scenario file")
	}
	return sf, nil
}

func (sf scenarioFile) toEngineRequest() engine.Request {
	roots := make([]engine.RootInput, 0, len(sf.Roots))
	for _, r := range sf.Roots {
		roots = append(roots, engine.RootInput{
			Statement:        r.Statement,
			ExclusionClause:  r.ExclusionClause,
			StoryCardinality: r.StoryCardinality,
			Components:       r.Components,
		})
	}

	overlaps := make(map[string]gates.PairOverlap, len(sf.Overlaps))
	for _, o := range sf.Overlaps {
		score, _ := decimal.NewFromString(o.OverlapScore)
		rootA := canon.CanonicalID(o.RootA)
		rootB := canon.CanonicalID(o.RootB)
		key := gates.PairKey(rootA, rootB)
		overlaps[key] = gates.PairOverlap{
			RootA:         rootA,
			RootB:         rootB,
			OverlapScore:  score,
			Discriminator: o.Discriminator,
		}
	}

	return engine.Request{
		Roots:         roots,
		Config:        config.Defaults(),
		CreditBudget:  sf.CreditBudget,
		Overlaps:      overlaps,
		TemplateSlots: sf.TemplateSlots,
	}
}

func (sf scenarioFile) buildPorts() (*portstub.FixtureEvaluator, *portstub.FixtureDecomposer) {
	evalFixtures := make([]portstub.EvaluationFixture, 0, len(sf.EvalFixtures))
	for _, f := range sf.EvalFixtures {
		p, _ := decimal.NewFromString(f.P)
		nodeKey := string(canon.CanonicalID(f.NodeKey))
		pairKey := ""
		if f.PairKey != "" {
			pairKey = f.PairKey
		}
		evalFixtures = append(evalFixtures, portstub.EvaluationFixture{
			NodeKey: nodeKey,
			PairKey: pairKey,
			Outcome: portstub.RubricFixture(p, f.Rubric, nil),
		})
	}

	decompFixtures := make([]portstub.DecompositionFixture, 0, len(sf.DecompFixtures))
	for _, f := range sf.DecompFixtures {
		items := make([]ports.DecompositionItem, 0, len(f.Items))
		for _, key := range f.Items {
			items = append(items, ports.DecompositionItem{Key: key, Role: hypothesis.RoleNEC})
		}
		decompFixtures = append(decompFixtures, portstub.DecompositionFixture{
			RootKey: string(canon.CanonicalID(f.RootKey)),
			SlotKey: f.SlotKey,
			Outcome: ports.DecompositionOutcome{
				Success: true,
				Type:    hypothesis.DecompositionAND,
				Items:   items,
			},
		})
	}

	return portstub.NewFixtureEvaluator(evalFixtures), portstub.NewFixtureDecomposer(decompFixtures)
}
