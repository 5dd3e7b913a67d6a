package face

import "errors"

// Unknown labels a face that matched no enrolled student.
const Unknown = "Unknown"

// ErrNoKnownFaces is returned when a face must be matched against an empty registry.
var ErrNoKnownFaces = errors.New("no known faces to compare")

// MatchResult describes the closest known face to an embedding.
type MatchResult struct {
	Index     int
	StudentID int64
	Name      string // Unknown unless Matched
	Distance  float64
	Matched   bool
}

// Distances returns the distance from embedding to every known face, in
// registry order.
func (r *Registry) Distances(embedding Embedding) []float64 {
	distances := make([]float64, len(r.Embeddings))
	for i, known := range r.Embeddings {
		distances[i] = Distance(known, embedding)
	}
	return distances
}

// Match finds the closest known face. The match decision is computed per
// candidate against threshold; the result is a match only when the closest
// candidate also passes it.
func (r *Registry) Match(embedding Embedding, threshold float64) (MatchResult, error) {
	if r == nil || r.Len() == 0 {
		return MatchResult{Index: -1, Name: Unknown}, ErrNoKnownFaces
	}

	distances := r.Distances(embedding)
	matches := make([]bool, len(distances))
	best := 0
	for i, d := range distances {
		matches[i] = d <= threshold
		if d < distances[best] {
			best = i
		}
	}

	result := MatchResult{
		Index:     best,
		StudentID: r.IDs[best],
		Name:      Unknown,
		Distance:  distances[best],
	}
	if matches[best] {
		result.Name = r.Names[best]
		result.Matched = true
	}
	return result, nil
}
