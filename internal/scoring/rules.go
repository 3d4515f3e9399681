package scoring

// RuleScope selects which posting fields a rule matches against.
type RuleScope string

const (
	// ScopeTitle matches against the posting title only.
	ScopeTitle RuleScope = "title"
	// ScopeText matches against the description text only. Contributes zero
	// in title-only mode.
	ScopeText RuleScope = "text"
	// ScopeEither matches against title and description combined.
	ScopeEither RuleScope = "either"
)

// Rule is one (pattern, weight, scope) scoring rule. Patterns are matched as
// lowercase substrings; each rule contributes weight × min(matches, maxRuleMatches).
type Rule struct {
	Pattern string
	Weight  int
	Scope   RuleScope
}

// maxRuleMatches caps the per-rule match count so repeated keywords cannot
// game the score.
const maxRuleMatches = 5

// defaultRules is the fixed, ordered rule list. Order matters only for the
// explanation trail; contributions are additive.
var defaultRules = []Rule{
	{Pattern: "customer success", Weight: 8, Scope: ScopeEither},
	{Pattern: "solutions architect", Weight: 7, Scope: ScopeTitle},
	{Pattern: "solutions engineer", Weight: 7, Scope: ScopeTitle},
	{Pattern: "technical account", Weight: 6, Scope: ScopeEither},
	{Pattern: "onboarding", Weight: 5, Scope: ScopeText},
	{Pattern: "deployment", Weight: 4, Scope: ScopeText},
	{Pattern: "implementation", Weight: 4, Scope: ScopeText},
	{Pattern: "stakeholder", Weight: 3, Scope: ScopeText},
	{Pattern: "renewal", Weight: 3, Scope: ScopeText},
	{Pattern: "adoption", Weight: 3, Scope: ScopeText},
	{Pattern: "enterprise", Weight: 2, Scope: ScopeEither},
	{Pattern: "saas", Weight: 2, Scope: ScopeEither},
	{Pattern: "remote", Weight: 1, Scope: ScopeEither},
	{Pattern: "intern", Weight: -10, Scope: ScopeTitle},
	{Pattern: "staffing agency", Weight: -8, Scope: ScopeText},
}

// Rules returns the fixed rule list. Callers must not mutate it.
func Rules() []Rule {
	return defaultRules
}
