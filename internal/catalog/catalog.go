package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotFound reports a lookup for content the catalog does not carry.
var ErrNotFound = errors.New("not found in catalog")

// Catalog indexes quest and concept content for lookup.
type Catalog struct {
	quests   []QuestDefinition
	concepts []ConceptDefinition

	questByID   map[string]*QuestDefinition
	conceptByID map[string]*ConceptDefinition
	poolByTier  map[Tier][]QuestDefinition
}

// New builds a Catalog from content, validating it first.
func New(quests []QuestDefinition, concepts []ConceptDefinition) (*Catalog, error) {
	if err := validateContent(quests, concepts); err != nil {
		return nil, err
	}

	c := &Catalog{
		quests:      quests,
		concepts:    concepts,
		questByID:   make(map[string]*QuestDefinition, len(quests)),
		conceptByID: make(map[string]*ConceptDefinition, len(concepts)),
		poolByTier:  make(map[Tier][]QuestDefinition),
	}

	for i := range c.quests {
		q := &c.quests[i]
		c.questByID[q.ID] = q
		c.poolByTier[q.Tier] = append(c.poolByTier[q.Tier], *q)
	}
	for i := range c.concepts {
		c.conceptByID[c.concepts[i].ID] = &c.concepts[i]
	}

	return c, nil
}

// Quest returns a quest definition by ID.
func (c *Catalog) Quest(id string) (QuestDefinition, error) {
	q, ok := c.questByID[id]
	if !ok {
		return QuestDefinition{}, fmt.Errorf("quest %q: %w", id, ErrNotFound)
	}
	return *q, nil
}

// Concept returns a concept definition by ID.
func (c *Catalog) Concept(id string) (ConceptDefinition, error) {
	cd, ok := c.conceptByID[id]
	if !ok {
		return ConceptDefinition{}, fmt.Errorf("concept %q: %w", id, ErrNotFound)
	}
	return *cd, nil
}

// Quests returns all quest definitions.
func (c *Catalog) Quests() []QuestDefinition {
	return slices.Clone(c.quests)
}

// Concepts returns all concept definitions.
func (c *Catalog) Concepts() []ConceptDefinition {
	return slices.Clone(c.concepts)
}

// Pool returns the quest pool for a tier, in catalog order.
func (c *Catalog) Pool(tier Tier) []QuestDefinition {
	return slices.Clone(c.poolByTier[tier])
}
