package scoring

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	subjectExact     = 1.0
	subjectContains  = 0.9
	subjectSynonym   = 0.7
	subjectNone      = 0.0
	subjectUnqueried = 0.5
)

// DefaultSynonyms is the built-in keyword table used to relate a free-text subject query
// to neighbouring subjects.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"matematicas":  {"algebra", "calculo", "geometria", "trigonometria", "aritmetica", "estadistica", "precalculo"},
		"fisica":       {"mecanica", "termodinamica", "electromagnetismo", "optica", "cinematica"},
		"quimica":      {"quimica organica", "bioquimica", "estequiometria", "quimica inorganica"},
		"biologia":     {"genetica", "anatomia", "ecologia", "microbiologia", "botanica"},
		"programacion": {"python", "javascript", "java", "algoritmos", "desarrollo web", "informatica"},
		"ingles":       {"english", "toefl", "ielts", "conversacion en ingles", "gramatica inglesa"},
		"espanol":      {"lengua castellana", "literatura", "redaccion", "ortografia", "lectura critica"},
		"historia":     {"ciencias sociales", "geografia", "historia universal", "historia de colombia"},
		"musica":       {"piano", "guitarra", "solfeo", "canto", "violin"},
	}
}

// SynonymTable relates normalized subject keywords to groups of equivalent terms.
type SynonymTable struct {
	groups [][]string
}

// NewSynonymTable builds a table from group key to related terms.
// Keys and terms are normalized; empty entries are dropped.
func NewSynonymTable(groups map[string][]string) *SynonymTable {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := &SynonymTable{}
	for _, key := range keys {
		group := make([]string, 0, len(groups[key])+1)
		if k := Normalize(key); k != "" {
			group = append(group, k)
		}
		for _, term := range groups[key] {
			if t := Normalize(term); t != "" {
				group = append(group, t)
			}
		}
		if len(group) > 0 {
			table.groups = append(table.groups, group)
		}
	}
	return table
}

// MergeSynonyms returns base with the override groups added. Terms of an existing key are appended.
func MergeSynonyms(base, overrides map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(base)+len(overrides))
	for key, terms := range base {
		merged[Normalize(key)] = append([]string(nil), terms...)
	}
	for key, terms := range overrides {
		k := Normalize(key)
		merged[k] = append(merged[k], terms...)
	}
	return merged
}

// Related reports whether query and subject fall into the same keyword group.
// Both values must already be normalized.
func (t *SynonymTable) Related(query, subject string) bool {
	if t == nil || query == "" || subject == "" {
		return false
	}
	for _, group := range t.groups {
		if !matchesAny(query, group) {
			continue
		}
		if matchesAny(subject, group) {
			return true
		}
	}
	return false
}

// matchesAny reports whether value equals a group term or contains one as whole words.
func matchesAny(value string, group []string) bool {
	padded := " " + strings.Join(strings.Fields(value), " ") + " "
	for _, term := range group {
		if value == term || strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}

// Normalize lowercases, trims and strips diacritics so "Matemáticas" and "matematicas" compare equal.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// classifySubject scores a single normalized candidate subject against a normalized query.
func (t *SynonymTable) classifySubject(query, subject string) float64 {
	switch {
	case subject == "":
		return subjectNone
	case query == subject:
		return subjectExact
	case strings.Contains(subject, query) || strings.Contains(query, subject):
		return subjectContains
	case t.Related(query, subject):
		return subjectSynonym
	default:
		return subjectNone
	}
}

// BestSubject returns the candidate subject that matches the query best together with its score.
// The first subject wins on ties.
func (t *SynonymTable) BestSubject(query string, subjects []string) (string, float64) {
	q := Normalize(query)
	best, bestScore := "", subjectNone
	if q == "" {
		return best, bestScore
	}
	for _, s := range subjects {
		score := t.classifySubject(q, Normalize(s))
		if score > bestScore {
			best, bestScore = strings.TrimSpace(s), score
		}
		if bestScore == subjectExact {
			break
		}
	}
	return best, bestScore
}
