package pack

import (
	"path"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"

	"github.com/sibyllinesoft/refactorlens/internal/graph"
)

// CloneMember mirrors feature.CloneMember: one
// participant in a pre-computed near-duplicate group.
type CloneMember struct {
	EntityID   string
	Path       string
	StartLine  int
	EndLine    int
	Similarity float64
}

// CloneGroup is a set of near-duplicate members with pairwise similarity.
type CloneGroup struct {
	Members []CloneMember
}

// CloneConfig configures the clone-pack family.
type CloneConfig struct {
	MinSimilarity float64 // default 0.85
	MinTotalLOC   int     // default 60
	MaxParameters int     // default 6
}

func DefaultCloneConfig() CloneConfig {
	return CloneConfig{MinSimilarity: 0.85, MinTotalLOC: 60, MaxParameters: 6}
}

// TemplateParameter is a placeholder token-slot varying across clone
// members.
type TemplateParameter struct {
	Name     string
	TypeHint string
}

// OptionalBlock is a code run present in some, not all, clone members.
type OptionalBlock struct {
	Name      string
	AppearsIn []string
}

// CloneTemplate is the extracted shape of a clone group.
type CloneTemplate struct {
	RepresentativePath  string
	RepresentativeLines string
	Parameters          []TemplateParameter
	OptionalBlocks      []OptionalBlock
}

// SuggestedTarget is where the clone builder recommends extracting shared
// code to.
type SuggestedTarget struct {
	Language string
	Path     string
	Export   string
}

// ClonePayload is the clone-consolidation pack's kind-specific data.
type ClonePayload struct {
	Members         []CloneMember
	Template        CloneTemplate
	SuggestedTarget SuggestedTarget
}

// targetByLanguage maps the dominant language to a suggested extraction
// filename and exported symbol following that language's convention.
var targetByLanguage = map[string]SuggestedTarget{
	"python":     {Language: "python", Path: "pkg/util/refactor_shared.py", Export: "shared_transform"},
	"typescript": {Language: "typescript", Path: "src/lib/shared.ts", Export: "sharedTransform"},
	"javascript": {Language: "javascript", Path: "src/utils/shared.js", Export: "sharedTransform"},
	"rust":       {Language: "rust", Path: "src/util/shared.rs", Export: "shared_transform"},
	"go":         {Language: "go", Path: "internal/shared/shared.go", Export: "SharedTransform"},
}

func languageForPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".rs":
		return "rust"
	case ".go":
		return "go"
	default:
		return "python"
	}
}

// BuildClonePacks implements CloneConsolidator.build_clonepacks: filter
// groups by similarity and total LOC, pick a medoid, extract a template,
// suggest a target, score value/effort, and emit steps/explanations. The
// index supplies member source text (from the file entities' retained raw
// text) for the medoid tie-break and optional-block extraction; members
// whose files are not indexed fall back to metadata-only handling.
func BuildClonePacks(idx *graph.Index, groups []CloneGroup, cfg CloneConfig) []*Pack {
	if len(groups) == 0 {
		return nil
	}

	var filtered []CloneGroup
	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		allSimilar := true
		totalLOC := 0
		for _, m := range g.Members {
			if m.Similarity < cfg.MinSimilarity {
				allSimilar = false
			}
			totalLOC += m.EndLine - m.StartLine + 1
		}
		if allSimilar && totalLOC >= cfg.MinTotalLOC {
			filtered = append(filtered, g)
		}
	}

	packs := make([]*Pack, 0, len(filtered))
	for i, g := range filtered {
		packs = append(packs, buildOneClonePack(idx, g, cfg, i))
	}
	return packs
}

func buildOneClonePack(idx *graph.Index, g CloneGroup, cfg CloneConfig, index int) *Pack {
	medoid := medoidIndex(idx, g.Members)
	rep := g.Members[medoid]

	params := extractParameters(g.Members, cfg.MaxParameters)
	optional := extractOptionalBlocks(idx, g.Members)

	template := CloneTemplate{
		RepresentativePath:  rep.Path,
		RepresentativeLines: lineRange(rep),
		Parameters:          params,
		OptionalBlocks:      optional,
	}
	target := suggestTarget(g.Members)

	totalDupLOC := 0
	for _, m := range g.Members {
		totalDupLOC += m.EndLine - m.StartLine + 1
	}
	scoreDrop := minFloat(0.2, float64(totalDupLOC)/1000.0)

	callSites := len(g.Members)
	locTouched := totalDupLOC + 2*callSites

	return &Pack{
		ID:   cloneID(index),
		Kind: KindCloneConsolidation,
		Value: Value{
			DupLOCRemoved:     totalDupLOC,
			ScoreDropEstimate: scoreDrop,
		},
		Effort: Effort{
			LOCTouched: locTouched,
			CallSites:  callSites,
		},
		Steps:        cloneSteps(template, target, len(g.Members)),
		Explanations: cloneExplanations(g.Members, len(params)),
		Clone: &ClonePayload{
			Members:         g.Members,
			Template:        template,
			SuggestedTarget: target,
		},
	}
}

func cloneID(i int) string {
	return idFor("clonepack", "SET", i)
}

func lineRange(m CloneMember) string {
	return intStr(m.StartLine) + "-" + intStr(m.EndLine)
}

// memberLines slices the member's source lines out of its file entity's
// retained raw text. Returns nil when the file is not indexed or carries no
// text, so callers degrade to metadata-only behavior.
func memberLines(idx *graph.Index, m CloneMember) []string {
	if idx == nil {
		return nil
	}
	id, ok := idx.FileEntityID(m.Path)
	if !ok {
		return nil
	}
	e, ok := idx.Entity(id)
	if !ok || e.RawText == "" {
		return nil
	}
	lines := strings.Split(e.RawText, "\n")
	start, end := m.StartLine-1, m.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// medoidTextCap bounds the per-member text fed to the edit-distance
// tie-break; similarity over a prefix is plenty to separate flat scores.
const medoidTextCap = 512

// medoidIndex returns the index of the member maximizing summed similarity
// to all others. When the upstream detector reports a flat similarity
// matrix, actual member text (when indexed) breaks the tie via
// edit-distance similarity; remaining ties favor the earliest member for
// determinism.
func medoidIndex(idx *graph.Index, members []CloneMember) int {
	if len(members) == 1 {
		return 0
	}

	texts := make([]string, len(members))
	for i, m := range members {
		if lines := memberLines(idx, m); lines != nil {
			t := strings.Join(lines, "\n")
			if len(t) > medoidTextCap {
				t = t[:medoidTextCap]
			}
			texts[i] = t
		}
	}

	best, bestScore := 0, -1.0
	for i := range members {
		var total float64
		for j, other := range members {
			if i == j {
				continue
			}
			total += other.Similarity
			if texts[i] != "" && texts[j] != "" {
				if refined, err := edlib.StringsSimilarity(texts[i], texts[j], edlib.JaroWinkler); err == nil {
					total += float64(refined) * 1e-3
				}
			}
		}
		if total > bestScore {
			bestScore = total
			best = i
		}
	}
	return best
}

// extractParameters: exact clones (every pairwise similarity at 1.0) have
// no varying token-slots and so take no parameters; near-duplicates imply
// slots proportional to how far the group sits below exact similarity.
// Beyond maxParams, collapse to a single config-object parameter.
func extractParameters(members []CloneMember, maxParams int) []TemplateParameter {
	if len(members) < 2 {
		return nil
	}
	minSim := 1.0
	for _, m := range members {
		if m.Similarity < minSim {
			minSim = m.Similarity
		}
	}
	if minSim >= 1.0 {
		return nil
	}

	// One slot per ~2% of divergence from an exact match.
	count := int((1.0-minSim)*50) + 1
	if count > maxParams {
		return []TemplateParameter{{Name: "config", TypeHint: "ConfigObject"}}
	}
	params := make([]TemplateParameter, 0, count)
	for i := 0; i < count; i++ {
		params = append(params, TemplateParameter{Name: "param" + intStr(i+1), TypeHint: "any"})
	}
	return params
}

// extractOptionalBlocks: a line is "optional" when its content digest
// appears in a strict subset of members rather than all of them. Digests
// are taken over whitespace-normalized line content from the members'
// indexed source text; when any member's text is unavailable the subset
// test cannot be trusted and the result is empty. Uniform groups, whose
// members share every line digest, also yield an empty list.
func extractOptionalBlocks(idx *graph.Index, members []CloneMember) []OptionalBlock {
	if len(members) < 3 {
		return nil
	}

	owners := make(map[uint64]map[int]struct{})
	for i, m := range members {
		lines := memberLines(idx, m)
		if lines == nil {
			return nil
		}
		for _, line := range lines {
			norm := strings.Join(strings.Fields(line), " ")
			if norm == "" {
				continue
			}
			h := xxhash.Sum64String(norm)
			if owners[h] == nil {
				owners[h] = make(map[int]struct{})
			}
			owners[h][i] = struct{}{}
		}
	}

	var blocks []OptionalBlock
	for h, who := range owners {
		if len(who) >= len(members) {
			continue
		}
		paths := make([]string, 0, len(who))
		for i := range who {
			paths = append(paths, members[i].Path)
		}
		sort.Strings(paths)
		blocks = append(blocks, OptionalBlock{
			Name:      "block_" + uint64Str(h),
			AppearsIn: paths,
		})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Name < blocks[j].Name })
	return blocks
}

func suggestTarget(members []CloneMember) SuggestedTarget {
	lang := "python"
	counts := map[string]int{}
	best := 0
	for _, m := range members {
		l := languageForPath(m.Path)
		counts[l]++
		if counts[l] > best {
			best = counts[l]
			lang = l
		}
	}
	if t, ok := targetByLanguage[lang]; ok {
		return t
	}
	return targetByLanguage["python"]
}

func cloneSteps(t CloneTemplate, target SuggestedTarget, memberCount int) []string {
	steps := []string{
		"Extract common body to " + target.Path + " as `" + target.Export + "`.",
	}
	if len(t.Parameters) > 0 {
		var names []string
		for _, p := range t.Parameters {
			names = append(names, p.Name+":"+p.TypeHint)
		}
		steps = append(steps, "Add parameters: "+strings.Join(names, ", ")+".")
	}
	if len(t.OptionalBlocks) > 0 {
		steps = append(steps, "Handle optional blocks with conditional parameters or hooks.")
	}
	steps = append(steps, "Replace "+intStr(memberCount)+" clone instances with calls; preserve exceptions & return contracts.")
	return steps
}

func cloneExplanations(members []CloneMember, paramCount int) []string {
	unique := map[string]struct{}{}
	for _, m := range members {
		unique[m.Path] = struct{}{}
	}
	if len(unique) > 1 {
		return []string{
			"High clone mass across " + intStr(len(unique)) + " modules; parameters differ by " + intStr(paramCount) + " identifiers/literals.",
		}
	}
	return []string{
		"Local code duplication with " + intStr(paramCount) + " varying parameters - good candidate for extraction.",
	}
}
