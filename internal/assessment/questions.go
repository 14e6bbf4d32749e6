// internal/assessment/questions.go
// Question-bank seed loader. Idempotent: existing external IDs are
// skipped so the loader can run on every startup.

package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

type questionBank struct {
	Questions []seedQuestion `json:"questions"`
}

type seedQuestion struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Question    string   `json:"question"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Type        string   `json:"type"`
	Keyed       string   `json:"keyed"`
	Severity    string   `json:"severity"`
	Options     []string `json:"options"`
}

// LoadQuestionBank seeds the question table from a JSON file. Missing
// files are logged and skipped, never fatal.
func LoadQuestionBank(ctx context.Context, repo Repository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("assessment: question bank not found at %s, skipping seed", path)
			return nil
		}
		return fmt.Errorf("failed to read question bank: %w", err)
	}

	var bank questionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return fmt.Errorf("failed to parse question bank: %w", err)
	}

	loaded := 0
	skipped := 0

	for i, sq := range bank.Questions {
		if sq.ID == "" {
			continue
		}

		exists, err := repo.QuestionExists(ctx, sq.ID)
		if err != nil {
			return err
		}
		if exists {
			skipped++
			continue
		}

		text := sq.Text
		if text == "" {
			text = sq.Question
		}

		q := &Question{
			ExternalID:   sq.ID,
			Text:         text,
			Category:     mapSeedCategory(sq.Category),
			Subcategory:  sq.Subcategory,
			Scale:        determineScale(&sq),
			Inverse:      sq.Keyed == "minus",
			Severity:     mapSeedSeverity(sq),
			DisplayOrder: i,
			Active:       true,
		}

		if err := repo.CreateQuestion(ctx, q); err != nil {
			return err
		}
		loaded++
	}

	log.Printf("assessment: loaded %d questions, skipped %d existing", loaded, skipped)
	return nil
}

func mapSeedCategory(category string) Category {
	switch strings.ToLower(category) {
	case "attachment_emotional":
		return CategoryAttachment
	case "dealbreakers_safety":
		return CategoryDealbreaker
	case "personality_temperament":
		return CategoryPersonality
	case "lifestyle_compatibility", "sex_intimacy":
		return CategoryLifestyle
	case "red_flags":
		return CategoryRedFlag
	default:
		// values_politics, relationship_dynamics, family_future,
		// hypotheticals_scenarios, location_specific
		return CategoryValues
	}
}

func determineScale(sq *seedQuestion) ResponseScale {
	switch sq.Type {
	case "binary":
		return ScaleBinary
	case "free_text", "open_ended":
		return ScaleFreeText
	}

	switch {
	case len(sq.Options) == 2:
		return ScaleBinary
	case len(sq.Options) >= 5:
		return ScaleLikert5
	}

	return ScaleAgreement5
}

func mapSeedSeverity(sq seedQuestion) Severity {
	switch strings.ToUpper(sq.Severity) {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	}
	if mapSeedCategory(sq.Category) == CategoryDealbreaker {
		return SeverityHigh
	}
	return ""
}
