package crafting

import (
	"errors"
	"strings"
	"testing"

	"github.com/gravitas-games/crimeboss/pkg/item"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

func sampleRegistry(t *testing.T) *RecipeRegistry {
	t.Helper()
	reg := NewRecipeRegistry()
	recipes := []*Recipe{
		{ID: "field_medkit", Category: "medical", Inputs: []models.ItemID{"vodka_coke", "bandages"}, Result: "medkit"},
		{ID: "molotov", Category: "weapons", Inputs: []models.ItemID{"vodka_coke", "rag", "vodka_coke"}, Result: "molotov"},
		{ID: "speedball", Category: "drugs", Inputs: []models.ItemID{"cocaine", "heroin"}, Result: "speedball"},
	}
	for _, r := range recipes {
		if err := reg.Register(r); err != nil {
			t.Fatalf("register %s: %v", r.ID, err)
		}
	}
	return reg
}

func TestMatchIsOrderIndependent(t *testing.T) {
	reg := sampleRegistry(t)
	for _, in := range [][]models.ItemID{
		{"vodka_coke", "bandages"},
		{"bandages", "vodka_coke"},
	} {
		r, err := reg.Match(in)
		if err != nil {
			t.Fatalf("expected match for %v, got %v", in, err)
		}
		if r.Result != "medkit" {
			t.Fatalf("expected medkit, got %s", r.Result)
		}
	}
	r, err := reg.Match([]models.ItemID{"rag", "vodka_coke", "vodka_coke"})
	if err != nil || r.ID != "molotov" {
		t.Fatalf("expected molotov, got %v / %v", r, err)
	}
}

func TestMatchRequiresExactMultiset(t *testing.T) {
	reg := sampleRegistry(t)
	cases := [][]models.ItemID{
		{"vodka_coke"},
		{"vodka_coke", "bandages", "bandages"},
		{"vodka_coke", "rag"},
		{"vodka_coke", "rag", "rag"},
		{},
		{"a", "b", "c", "d"},
	}
	for _, in := range cases {
		if _, err := reg.Match(in); !errors.Is(err, ErrNoRecipe) {
			t.Fatalf("expected ErrNoRecipe for %v, got %v", in, err)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRecipeRegistry()
	bad := []*Recipe{
		nil,
		{Inputs: []models.ItemID{"a"}, Result: "b"},
		{ID: "no_result", Inputs: []models.ItemID{"a"}},
		{ID: "no_inputs", Result: "b"},
		{ID: "too_many", Inputs: []models.ItemID{"a", "b", "c", "d"}, Result: "e"},
		{ID: "blank_input", Inputs: []models.ItemID{"a", ""}, Result: "e"},
	}
	for _, r := range bad {
		if err := reg.Register(r); err == nil {
			t.Fatalf("expected error for %+v", r)
		}
	}
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Count())
	}
}

func TestRegisterRejectsAmbiguousInputs(t *testing.T) {
	reg := sampleRegistry(t)
	err := reg.Register(&Recipe{ID: "dupe", Inputs: []models.ItemID{"bandages", "vodka_coke"}, Result: "rag"})
	if !errors.Is(err, ErrAmbiguousRecipe) {
		t.Fatalf("expected ErrAmbiguousRecipe, got %v", err)
	}
}

func TestRegisterUpdateReplacesIndices(t *testing.T) {
	reg := sampleRegistry(t)
	err := reg.Register(&Recipe{ID: "field_medkit", Category: "first_aid", Inputs: []models.ItemID{"bandages", "bandages"}, Result: "medkit"})
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if _, err := reg.Match([]models.ItemID{"vodka_coke", "bandages"}); !errors.Is(err, ErrNoRecipe) {
		t.Fatalf("old inputs should no longer match, got %v", err)
	}
	if got := reg.GetByCategory("medical"); len(got) != 0 {
		t.Fatalf("expected medical category cleared, got %v", got)
	}
	if got := reg.GetByCategory("first_aid"); len(got) != 1 {
		t.Fatalf("expected first_aid entry, got %v", got)
	}
	if got := reg.GetByOutput("medkit"); len(got) != 1 {
		t.Fatalf("expected one medkit recipe, got %v", got)
	}
}

func TestRegisterCopiesInputs(t *testing.T) {
	reg := NewRecipeRegistry()
	in := []models.ItemID{"a", "b"}
	if err := reg.Register(&Recipe{ID: "ab", Inputs: in, Result: "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in[0] = "z"
	if _, err := reg.Match([]models.ItemID{"a", "b"}); err != nil {
		t.Fatalf("registry should be unaffected by caller slice, got %v", err)
	}
}

const recipeYAML = `
recipes:
  - id: field_medkit
    name: Field Medkit
    category: medical
    inputs: [vodka_coke, bandages]
    result: medkit
`

func TestParseRecipesChecksCatalog(t *testing.T) {
	catalog := item.MustCatalog(
		item.Definition{ID: "vodka_coke", Kind: item.KindMaterial},
		item.Definition{ID: "bandages", Kind: item.KindMaterial},
		item.Definition{ID: "medkit", Kind: item.KindMaterial},
	)
	reg, err := ParseRecipes([]byte(recipeYAML), catalog)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if reg.Lookup("field_medkit") == nil {
		t.Fatal("expected field_medkit to be registered")
	}

	typo := strings.Replace(recipeYAML, "bandages]", "bandage]", 1)
	_, err = ParseRecipes([]byte(typo), catalog)
	if err == nil || !strings.Contains(err.Error(), `did you mean "bandages"`) {
		t.Fatalf("expected suggestion in error, got %v", err)
	}
}

func TestParseRecipesRejectsDuplicateIDs(t *testing.T) {
	data := recipeYAML + `
  - id: field_medkit
    inputs: [bandages, bandages]
    result: medkit
`
	if _, err := ParseRecipes([]byte(data), nil); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
