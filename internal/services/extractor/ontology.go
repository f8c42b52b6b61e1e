package extractor

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/regula/internal/models"
)

// ontologyDoc is the YAML shape of a schema document in the ontology
// collection:
//
//	entity_types:
//	  - name: Customer
//	    attributes: [email, region]
//	relationship_types:
//	  - owns
type ontologyDoc struct {
	EntityTypes []struct {
		Name       string   `yaml:"name"`
		Attributes []string `yaml:"attributes"`
	} `yaml:"entity_types"`
	RelationshipTypes []string `yaml:"relationship_types"`
}

// entityTypeLine matches prose schema lines such as
// "- Customer: email, region" or "* Vendor (name, contract_id)"
var entityTypeLine = regexp.MustCompile(`^[-*]\s*([A-Z][A-Za-z0-9_ ]*?)\s*[(:]\s*([^)]*)\)?\s*$`)

// ParseOntology builds the declared ontology from the ontology collection
// query result. YAML documents are preferred; prose schema descriptions are
// parsed line by line as a fallback. Returns nil when no declarations can
// be recovered, in which case extraction must not run.
func ParseOntology(result *models.QueryResult) *models.Ontology {
	if result == nil || !result.ResultsFound {
		return nil
	}

	for _, citation := range result.Citations {
		if ont := parseYAML(citation.Content); ont != nil {
			return ont
		}
	}
	if ont := parseYAML(result.Summary); ont != nil {
		return ont
	}

	var parts []string
	parts = append(parts, result.Summary)
	for _, citation := range result.Citations {
		parts = append(parts, citation.Content)
	}
	return parseProse(strings.Join(parts, "\n"))
}

func parseYAML(text string) *models.Ontology {
	var doc ontologyDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil
	}
	if len(doc.EntityTypes) == 0 {
		return nil
	}

	ont := &models.Ontology{RelationshipTypes: doc.RelationshipTypes}
	for _, t := range doc.EntityTypes {
		if t.Name == "" {
			continue
		}
		ont.EntityTypes = append(ont.EntityTypes, models.EntityTypeDef{
			Name:       t.Name,
			Attributes: t.Attributes,
		})
	}
	if len(ont.EntityTypes) == 0 {
		return nil
	}
	return ont
}

// parseProse recovers declarations from narrative schema text. Sections are
// recognized by "entity types" and "relationship types" headings; list items
// under them declare the members.
func parseProse(text string) *models.Ontology {
	ont := &models.Ontology{}
	section := ""

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "entity type"):
			section = "entities"
			continue
		case strings.Contains(lower, "relationship type") || strings.Contains(lower, "relation type"):
			section = "relationships"
			continue
		}

		if line == "" || (line[0] != '-' && line[0] != '*') {
			continue
		}

		switch section {
		case "entities":
			if m := entityTypeLine.FindStringSubmatch(line); m != nil {
				ont.EntityTypes = append(ont.EntityTypes, models.EntityTypeDef{
					Name:       strings.TrimSpace(m[1]),
					Attributes: splitAttributes(m[2]),
				})
			} else if name := strings.TrimSpace(strings.TrimLeft(line, "-* ")); name != "" {
				ont.EntityTypes = append(ont.EntityTypes, models.EntityTypeDef{Name: name})
			}
		case "relationships":
			if name := strings.TrimSpace(strings.TrimLeft(line, "-* ")); name != "" {
				ont.RelationshipTypes = append(ont.RelationshipTypes, name)
			}
		}
	}

	if len(ont.EntityTypes) == 0 {
		return nil
	}
	return ont
}

func splitAttributes(csv string) []string {
	var attrs []string
	for _, part := range strings.Split(csv, ",") {
		if attr := strings.TrimSpace(part); attr != "" {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}
