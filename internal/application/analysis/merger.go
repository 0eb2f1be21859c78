package analysis

import (
	"errors"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
)

var errNothingToMerge = errors.New("no chunk analyses to merge")

// Merge folds per-chunk analyses, in chunk order, into one record. A single
// analysis is returned as is. Otherwise the first chunk's steps are numbered
// from 1 so that the merged steps form a contiguous 1..N sequence.
func Merge(chunks []domain.RecipeAnalysis) (domain.RecipeAnalysis, error) {
	if len(chunks) == 0 {
		return domain.RecipeAnalysis{}, errNothingToMerge
	}
	if len(chunks) == 1 {
		return chunks[0], nil
	}

	acc := chunks[0].Clone()
	for i := range acc.Instructions {
		acc.Instructions[i].Step = i + 1
	}
	for _, next := range chunks[1:] {
		acc = MergeStep(acc, next)
	}
	return acc, nil
}

// MergeStep combines acc with the next chunk and returns a new record;
// neither input is modified.
//
// Ingredients are deduplicated by exact name, keeping the first occurrence.
// next's steps are renumbered to follow acc's highest step. Tags and metadata
// sets are unioned. The confidence score is the mean of the two inputs, so
// with more than two chunks later chunks weigh more.
func MergeStep(acc, next domain.RecipeAnalysis) domain.RecipeAnalysis {
	out := acc.Clone()
	incoming := next.Clone()

	seen := make(map[string]struct{}, len(out.Ingredients))
	for _, ing := range out.Ingredients {
		seen[ing.Name] = struct{}{}
	}
	for _, ing := range incoming.Ingredients {
		if _, dup := seen[ing.Name]; dup {
			continue
		}
		seen[ing.Name] = struct{}{}
		out.Ingredients = append(out.Ingredients, ing)
	}

	offset := out.MaxStep()
	for i, step := range incoming.Instructions {
		step.Step = offset + i + 1
		out.Instructions = append(out.Instructions, step)
	}

	out.Tags = union(out.Tags, incoming.Tags)

	m := &out.AIMetadata
	m.DetectedIngredients = union(m.DetectedIngredients, incoming.AIMetadata.DetectedIngredients)
	m.DetectedTechniques = union(m.DetectedTechniques, incoming.AIMetadata.DetectedTechniques)
	m.SuggestedHashtags = union(m.SuggestedHashtags, incoming.AIMetadata.SuggestedHashtags)
	m.EquipmentNeeded = union(m.EquipmentNeeded, incoming.AIMetadata.EquipmentNeeded)
	m.ConfidenceScore = (acc.AIMetadata.ConfidenceScore + next.AIMetadata.ConfidenceScore) / 2

	return out
}

// union appends the members of b missing from a, preserving first-seen order
// and dropping repeats already present in a
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
