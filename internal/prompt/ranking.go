package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// poolSpec carries the pool-specific wording of the ranking prompt. The
// surrounding contract (exact count, descending rank order, allocation
// cap, bare-keyword skills, JSON schema) is identical across pools.
type poolSpec struct {
	RoleTitle    string // "PROJECT MANAGERS"
	RoleNoun     string // "manager"
	RoleDesc     string // profile summary role line
	Prefix       string // candidate label prefix: M, T, D
	JSONKey      string // top-level array key in the response
	Criteria     []string
	FocusLine    string
	SkillHints   string
	SkillAnti    string
	ExpGuidance  string
	WhyLine      string
	ConcernsLine string
	PhaseWord    string // "project needs", "testing phases", "development phases"
}

var poolSpecs = map[domain.Pool]poolSpec{
	domain.PoolManager: {
		RoleTitle: "PROJECT MANAGERS",
		RoleNoun:  "manager",
		RoleDesc:  "Project Manager / Team Lead",
		Prefix:    "M",
		JSONKey:   "managers",
		Criteria: []string{
			"Leadership and project management experience",
			"Technical understanding of required technologies",
			"Department and practice area alignment",
			"Availability and capacity (both percentage and weekly hours)",
			"Experience level and designation",
			"Communication and coordination skills",
			"Practice area experience that matches project requirements",
			"Higher proficiency levels (in parentheses) indicate stronger expertise and must be considered when evaluating skills",
		},
		FocusLine:    "Focus on management capabilities, not just technical skills",
		SkillHints:   `"Agile", "Scrum", "JIRA", "Azure DevOps", "Risk Management"`,
		SkillAnti:    `"Learn advanced project management frameworks for better coordination"`,
		ExpGuidance:  "Consider project complexity, technology stack, team size, and duration",
		WhyLine:      "Explain WHY they're ideal for managing this specific project",
		ConcernsLine: "Point out any concerns or limitations",
		PhaseWord:    "project needs",
	},
	domain.PoolTester: {
		RoleTitle: "QUALITY ASSURANCE TESTERS",
		RoleNoun:  "tester",
		RoleDesc:  "Quality Assurance / Software Tester",
		Prefix:    "T",
		JSONKey:   "testers",
		Criteria: []string{
			"Testing expertise and methodologies",
			"Technology stack familiarity",
			"Domain/department experience",
			"Automation vs manual testing skills",
			"Availability and capacity (both percentage and weekly hours)",
			"Previous project success in similar environments",
			"Practice area experience that matches project requirements",
			"Higher proficiency levels (in parentheses) indicate stronger expertise and must be considered when evaluating skills",
		},
		FocusLine:    "Focus on testing capabilities, automation skills, and quality assurance experience",
		SkillHints:   `"Selenium", "Jest", "Cypress", "JMeter", "Postman", "API Testing"`,
		SkillAnti:    `"Learn automation testing frameworks for better coverage"`,
		ExpGuidance:  "Consider testing complexity, automation needs, technology stack, and project duration",
		WhyLine:      "Explain WHY they're perfect for testing this specific project",
		ConcernsLine: "Point out any testing gaps or concerns",
		PhaseWord:    "testing phases",
	},
	domain.PoolDeveloper: {
		RoleTitle: "SOFTWARE DEVELOPERS",
		RoleNoun:  "developer",
		RoleDesc:  "Software Developer",
		Prefix:    "D",
		JSONKey:   "developers",
		Criteria: []string{
			"Technical skills match with required technologies",
			"Experience level and programming expertise",
			"Department and domain knowledge",
			"Availability and capacity (both percentage and weekly hours)",
			"Previous project success in similar tech stacks",
			"Problem-solving and development capabilities",
			"Practice area experience that matches project requirements",
			"Higher proficiency levels (in parentheses) indicate stronger expertise and must be considered when evaluating skills",
		},
		FocusLine:    "Focus on technical capabilities, experience, and development skills",
		SkillHints:   `"React", "Node.js", "Docker", "GraphQL", "TypeScript"`,
		SkillAnti:    `"Learn modern JavaScript frameworks for better performance"`,
		ExpGuidance:  "Consider technical complexity, technology stack difficulty, and project scope",
		WhyLine:      "Explain WHY they're ideal for developing this specific project",
		ConcernsLine: "Point out any technical gaps or concerns",
		PhaseWord:    "development phases",
	},
}

// ResponseKey returns the top-level JSON key the ranking prompt instructs
// the model to use for the given pool.
func ResponseKey(pool domain.Pool) string {
	return poolSpecs[pool].JSONKey
}

func requirementsSummary(req domain.Requirements) string {
	return fmt.Sprintf(
		"PROJECT REQUIREMENTS:\n"+
			"- Project: %s\n"+
			"- Technologies: %s\n"+
			"- Practice: %s\n"+
			"- Category: %s\n"+
			"- Duration: %s to %s\n"+
			"- Budget: %s",
		orUnknown(req.ProjectName),
		strings.Join(req.Technology, ", "),
		req.Practice, req.Category,
		req.StartDate, req.EndDate,
		req.BudgetedHours)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func candidateBlock(prefix string, i int, p domain.CandidateProfile) string {
	return fmt.Sprintf(
		"%s%d. %s\n"+
			"- Designation: %s\n"+
			"- Skills: %s\n"+
			"- Experience: %s months\n"+
			"- Level: %s\n"+
			"- Department: %s\n"+
			"- Base Department: %s\n"+
			"- Hours Worked on Skills: %s hours\n"+
			"- Availability: %s%%\n"+
			"- Weekly Hours Available: %s hours/week\n"+
			"- Practice Areas: %s",
		prefix, i, p.Name,
		orNA(p.Designation), orNA(p.Skills), fmtNum(p.ExperienceMonths),
		orNA(p.DesignationLevel), orNA(p.Department), orNA(p.BaseDepartment),
		fmtNum(p.HoursWorked), fmtNum(p.AvailabilityPct), fmtNum(p.WeeklyHours),
		orNA(p.PracticeHours))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Ranking builds the recommendation prompt for one pool. The model is
// instructed to return exactly target entries as a JSON object keyed by
// the pool's plural name, ranked best first.
func Ranking(pool domain.Pool, req domain.Requirements, candidates []domain.Candidate, target int) string {
	spec := poolSpecs[pool]

	var cand strings.Builder
	fmt.Fprintf(&cand, "AVAILABLE %sS:\n", strings.ToUpper(spec.RoleNoun))
	for i, c := range candidates {
		cand.WriteString("\n")
		cand.WriteString(candidateBlock(spec.Prefix, i+1, c.Profile))
		cand.WriteString("\n")
	}

	var criteria strings.Builder
	for i, c := range spec.Criteria {
		fmt.Fprintf(&criteria, "%d. %s\n", i+1, c)
	}

	return fmt.Sprintf(
		"You are an expert consultant selecting %[1]s for a software development project.\n\n"+
			"*** CRITICAL REQUIREMENT ***\n"+
			"You MUST recommend EXACTLY %[2]d %[3]s(s). NO MORE, NO LESS.\n\n"+
			"%[4]s\n\n"+
			"%[5]s\n"+
			"%[6]s SELECTION CRITERIA:\n%[7]s\n"+
			"ALLOCATION RULES:\n"+
			"- CRITICAL: Check each candidate's \"Weekly Hours Available\" field carefully\n"+
			"- Your allocation suggestion MUST be ≤ their available hours (never exceed!)\n"+
			"- Consider %[8]s but respect their capacity limits\n\n"+
			"SKILLS RECOMMENDATION RULES:\n"+
			"- Return ONLY technology names, tool names, or methodology keywords\n"+
			"- NO explanations, descriptions, or full sentences\n"+
			"- Examples: %[9]s\n"+
			"- NOT: %[10]s\n\n"+
			"EXPERIENCE RECOMMENDATION RULES:\n"+
			"- Suggest ideal experience level in years for this specific project\n"+
			"- %[11]s\n"+
			"- Format as a number (e.g., 3 for 3 years, 5 for 5 years)\n\n"+
			"STRICT INSTRUCTIONS:\n"+
			"1. Recommend EXACTLY %[2]d %[3]s(s) - do not exceed this number\n"+
			"2. RANK them in DESCENDING ORDER OF PREFERENCE (%[12]s1 = best choice, %[12]s2 = second best, etc.)\n"+
			"3. For each recommendation:\n"+
			"- %[13]s\n"+
			"- %[14]s\n"+
			"- Justify why you picked this person over others\n"+
			"- Consider their practice area experience and weekly availability\n"+
			"- Suggest realistic hour allocation as a number (MUST NOT exceed their weekly available hours)\n"+
			"- Recommend additional skills as simple keywords/technologies only\n"+
			"- Suggest ideal experience level for this project type\n"+
			"4. %[15]s\n"+
			"5. Consider their current workload and availability (both %% and weekly hours)\n"+
			"6. Keep the tone executive-summary style, focused and concise.\n\n"+
			"Return your response as a JSON object with this structure:\n"+
			"%[16]s",
		spec.RoleTitle, target, spec.RoleNoun,
		requirementsSummary(req),
		cand.String(),
		strings.ToUpper(spec.RoleNoun),
		criteria.String(),
		spec.PhaseWord,
		spec.SkillHints,
		spec.SkillAnti,
		spec.ExpGuidance,
		spec.Prefix,
		spec.WhyLine,
		spec.ConcernsLine,
		spec.FocusLine,
		responseSchema(spec))
}

func responseSchema(spec poolSpec) string {
	return fmt.Sprintf(`{
    "%[1]s": [
        {
            "rank": "1",
            "name": "%[2]s Name",
            "designation": "designation of the %[3]s selected",
            "match_score": 0.95,
            "reasons": [
                "Strong skills match with project requirements",
                "Proven experience in similar projects",
                "Available capacity aligns with project timeline",
                "Practice area experience matches project domain"
            ],
            "concerns": [
                "Any potential challenges",
                "Current availability/project commitments"
            ],
            "why_pick": "Clear justification for why this %[3]s was selected over others",
            "allocation_suggestion": 23,
            "recommended_skills": [
                "Keyword",
                "Keyword"
            ],
            "recommended_experience": 3,
            "recommendation": "Highly recommended / Recommended / Consider"
        }
    ]
}`, spec.JSONKey, titleCase(spec.RoleNoun), spec.RoleNoun)
}

// SearchQuery builds the vector search text used to retrieve candidates
// for a set of project requirements.
func SearchQuery(req domain.Requirements) string {
	tech := strings.Join(req.Technology, ", ")
	return fmt.Sprintf(
		"Technologies: %s\nPractice: %s\nCategory: %s\nSkills needed: %s",
		tech, req.Practice, req.Category, tech)
}

// ProfileSummary renders the text embedded for a candidate profile. The
// same rendering is used at index time and when showing raw candidates.
func ProfileSummary(p domain.CandidateProfile) string {
	spec := poolSpecs[p.Pool]
	return fmt.Sprintf(
		"%s: %s\n"+
			"Role: %s\n"+
			"Designation: %s\n"+
			"Skills: %s\n"+
			"Experience: %s months\n"+
			"Level: %s\n"+
			"Department: %s\n"+
			"Base Department: %s\n"+
			"Hours Worked on Skills: %s hours\n"+
			"Availability: %s%%\n"+
			"Weekly Hours Available: %s hours/week\n"+
			"Practice Areas with Hours: %s",
		titleCase(string(p.Pool)), orUnknown(p.Name),
		spec.RoleDesc,
		orUnknown(p.Designation), p.Skills, fmtNum(p.ExperienceMonths),
		orUnknown(p.DesignationLevel), orUnknown(p.Department), orUnknown(p.BaseDepartment),
		fmtNum(p.HoursWorked), fmtNum(p.AvailabilityPct), fmtNum(p.WeeklyHours),
		p.PracticeHours)
}
