package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/regula/internal/models"
)

// Extractor builds a typed data graph from business-process content, using
// only the entity and relationship types the ontology declares. Mentions of
// undeclared types are discarded, never coerced into a declared type.
type Extractor struct {
	logger arbor.ILogger
}

// New creates an entity extractor
func New(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// attributePair matches "key: value" segments inside an entity's detail
// block, e.g. "(email: ops@acme.example, region: EU)"
var attributePair = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_ ]*?)\s*:\s*([^,()]+)`)

// Extract scans the business-process query result for instances of the
// declared entity types. Each declared type appears in exactly one of
// TypesFound or TypesMissing.
func (e *Extractor) Extract(ontology *models.Ontology, business *models.QueryResult) *models.DataGraph {
	graph := &models.DataGraph{
		Entities:     []models.Entity{},
		TypesFound:   []string{},
		TypesMissing: []string{},
	}

	if ontology == nil || len(ontology.EntityTypes) == 0 {
		graph.Summary = "No ontology schema is available, so no data graph could be built."
		graph.Gaps = append(graph.Gaps, "No entity types are declared in the ontology collection.")
		graph.SuggestedQuestions = append(graph.SuggestedQuestions,
			"Would you like to upload an ontology schema describing your entity and relationship types?")
		return graph
	}

	declaredRels := ontology.DeclaredRelationships()
	sources := map[string]bool{}
	byKey := map[string]*models.Entity{}
	var order []string

	if business != nil && business.ResultsFound {
		for _, citation := range business.Citations {
			sources[citation.Source] = true
			for _, def := range ontology.EntityTypes {
				for _, found := range scanEntities(def, declaredRels, citation.Content) {
					key := def.Name + "\x00" + found.Name
					if existing, ok := byKey[key]; ok {
						mergeEntity(existing, found)
						continue
					}
					entity := found
					byKey[key] = &entity
					order = append(order, key)
				}
			}
		}
	}

	for _, key := range order {
		graph.Entities = append(graph.Entities, *byKey[key])
	}
	graph.DocumentsAnalyzed = len(sources)

	found := map[string]bool{}
	for _, entity := range graph.Entities {
		found[entity.Type] = true
	}
	for _, def := range ontology.EntityTypes {
		if found[def.Name] {
			graph.TypesFound = append(graph.TypesFound, def.Name)
		} else {
			graph.TypesMissing = append(graph.TypesMissing, def.Name)
			graph.Gaps = append(graph.Gaps,
				fmt.Sprintf("No %s instances were found in the analyzed documents.", def.Name))
			graph.SuggestedQuestions = append(graph.SuggestedQuestions,
				fmt.Sprintf("Can you provide documentation that describes your %s records?", def.Name))
		}
	}
	sort.Strings(graph.TypesFound)
	sort.Strings(graph.TypesMissing)

	graph.Summary = summarize(graph, len(ontology.EntityTypes))

	e.logger.Info().
		Int("entities", len(graph.Entities)).
		Int("types_found", len(graph.TypesFound)).
		Int("types_missing", len(graph.TypesMissing)).
		Int("documents", graph.DocumentsAnalyzed).
		Msg("Data graph extracted")

	return graph
}

// scanEntities finds instances of one declared type in a document snippet.
// Recognized shape: "TypeName: Instance Name (key: value, rel: Target)",
// optionally as a list item. Pairs whose key matches a declared relationship
// type become relationships; pairs matching a declared attribute become
// attributes; everything else is dropped.
func scanEntities(def models.EntityTypeDef, declaredRels map[string]bool, content string) []models.Entity {
	pattern := regexp.MustCompile(`(?m)^\s*[-*]?\s*` + regexp.QuoteMeta(def.Name) + `\s*:\s*([^(\n]+)(?:\(([^)]*)\))?\s*$`)

	declaredAttrs := map[string]bool{}
	for _, attr := range def.Attributes {
		declaredAttrs[strings.ToLower(attr)] = true
	}

	var entities []models.Entity
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		entity := models.Entity{
			Type:       def.Name,
			Name:       name,
			Attributes: map[string]string{},
		}
		for _, pair := range attributePair.FindAllStringSubmatch(m[2], -1) {
			key := strings.TrimSpace(pair[1])
			value := strings.TrimSpace(pair[2])
			switch {
			case declaredRels[key]:
				entity.Relationships = append(entity.Relationships, models.Relationship{Type: key, Target: value})
			case len(declaredAttrs) == 0 || declaredAttrs[strings.ToLower(key)]:
				entity.Attributes[key] = value
			}
		}
		entities = append(entities, entity)
	}
	return entities
}

func mergeEntity(dst *models.Entity, src models.Entity) {
	for key, value := range src.Attributes {
		if _, ok := dst.Attributes[key]; !ok {
			dst.Attributes[key] = value
		}
	}
	for _, rel := range src.Relationships {
		if !hasRelationship(dst.Relationships, rel) {
			dst.Relationships = append(dst.Relationships, rel)
		}
	}
}

func hasRelationship(rels []models.Relationship, rel models.Relationship) bool {
	for _, existing := range rels {
		if existing == rel {
			return true
		}
	}
	return false
}

func summarize(graph *models.DataGraph, declared int) string {
	if len(graph.Entities) == 0 {
		return fmt.Sprintf(
			"No instances of the %d declared entity types were found in the analyzed documents.", declared)
	}
	return fmt.Sprintf(
		"Extracted %d entities covering %d of %d declared entity types from %d documents.",
		len(graph.Entities), len(graph.TypesFound), declared, graph.DocumentsAnalyzed)
}
