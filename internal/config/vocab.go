package config

import "joblens/pkg/models"

// RoleRule is one ordered classification rule: the first rule whose pattern
// set matches the posting text assigns the category. Declaration order is the
// tie-break policy, so rule order in this file (and in yaml overrides) is
// load-bearing.
type RoleRule struct {
	Category models.RoleCategory `yaml:"category"`
	Keywords []string            `yaml:"keywords"`
}

// SkillAlias maps a non-canonical spelling to its canonical skill token.
type SkillAlias struct {
	Alias string `yaml:"alias"`
	Skill string `yaml:"skill"`
}

// ExperienceRule maps a keyword set to an experience level, evaluated in
// declaration order.
type ExperienceRule struct {
	Level    models.ExperienceLevel `yaml:"level"`
	Keywords []string               `yaml:"keywords"`
}

// Vocabulary carries every keyword table the classifier and aggregator use.
// It is loaded as data, threaded into constructors, and never read from
// ambient state, so classification stays pure and reproducible.
type Vocabulary struct {
	RoleRules       []RoleRule       `yaml:"role_rules"`
	Skills          []string         `yaml:"skills"`
	SkillAliases    []SkillAlias     `yaml:"skill_aliases"`
	USTokens        []string         `yaml:"us_tokens"`
	IndiaTokens     []string         `yaml:"india_tokens"`
	RemoteTokens    []string         `yaml:"remote_tokens"`
	HybridTokens    []string         `yaml:"hybrid_tokens"`
	OnsiteTokens    []string         `yaml:"onsite_tokens"`
	ExperienceRules []ExperienceRule `yaml:"experience_rules"`
	AIKeywords      []string         `yaml:"ai_keywords"`
}

// fillDefaults replaces any table the yaml left empty with the compiled
// default, so a partial vocabulary override never silently disables a
// classification axis.
func (v *Vocabulary) fillDefaults() {
	def := DefaultVocabulary()
	if len(v.RoleRules) == 0 {
		v.RoleRules = def.RoleRules
	}
	if len(v.Skills) == 0 {
		v.Skills = def.Skills
	}
	if len(v.SkillAliases) == 0 {
		v.SkillAliases = def.SkillAliases
	}
	if len(v.USTokens) == 0 {
		v.USTokens = def.USTokens
	}
	if len(v.IndiaTokens) == 0 {
		v.IndiaTokens = def.IndiaTokens
	}
	if len(v.RemoteTokens) == 0 {
		v.RemoteTokens = def.RemoteTokens
	}
	if len(v.HybridTokens) == 0 {
		v.HybridTokens = def.HybridTokens
	}
	if len(v.OnsiteTokens) == 0 {
		v.OnsiteTokens = def.OnsiteTokens
	}
	if len(v.ExperienceRules) == 0 {
		v.ExperienceRules = def.ExperienceRules
	}
	if len(v.AIKeywords) == 0 {
		v.AIKeywords = def.AIKeywords
	}
}

// DefaultVocabulary returns the built-in taxonomy tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		RoleRules: []RoleRule{
			{Category: models.RoleMLAI, Keywords: []string{
				"machine learning", "ml engineer", "ai engineer", "deep learning",
				"nlp engineer", "computer vision", "mlops", "research scientist",
				"applied scientist", "llm", "generative ai",
			}},
			{Category: models.RoleDataEngineer, Keywords: []string{
				"data engineer", "etl", "data pipeline", "data platform",
				"analytics engineer", "big data",
			}},
			{Category: models.RoleDataScientist, Keywords: []string{
				"data scientist", "data science", "business intelligence",
				"quantitative analyst", "statistician",
			}},
			{Category: models.RoleDevOps, Keywords: []string{
				"devops", "platform engineer", "sre", "site reliability",
				"infrastructure engineer", "cloud engineer", "devsecops",
				"release engineer", "build engineer",
			}},
			{Category: models.RoleForwardDeployed, Keywords: []string{
				"forward deployed", "solutions engineer", "field engineer",
				"solutions architect",
			}},
			{Category: models.RoleProductProgramMgr, Keywords: []string{
				"product manager", "program manager", "tpm", "technical program",
				"product owner",
			}},
			{Category: models.RoleFrontend, Keywords: []string{
				"frontend", "front-end", "front end", "ui engineer",
				"react developer", "angular developer", "vue developer",
				"web developer",
			}},
			{Category: models.RoleBackend, Keywords: []string{
				"backend", "back-end", "back end", "api engineer", "server-side",
				"java developer", "python developer", "golang engineer",
				"microservices engineer",
			}},
			{Category: models.RoleFullStack, Keywords: []string{
				"full stack", "fullstack", "full-stack",
			}},
			{Category: models.RoleEngineeringMgr, Keywords: []string{
				"engineering manager", "tech lead", "technical lead", "team lead",
				"vp of engineering", "director of engineering", "head of engineering",
			}},
			{Category: models.RoleSoftwareEngineer, Keywords: []string{
				"software engineer", "software developer", "swe",
				"software development engineer", "sde",
			}},
		},
		Skills: []string{
			// Languages
			"Python", "JavaScript", "TypeScript", "Java", "Go", "Rust", "C++",
			"C#", "Scala", "Kotlin", "Swift", "Ruby", "PHP", "Bash",
			// Frontend
			"React", "Next.js", "Vue", "Angular", "Svelte", "HTML", "CSS",
			"Tailwind", "Redux", "GraphQL", "WebSockets",
			// Backend
			"Node.js", "Django", "FastAPI", "Flask", "Spring Boot", "Express",
			"Rails", "NestJS", "gRPC", "Microservices", "REST",
			// Databases and messaging
			"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch",
			"Cassandra", "DynamoDB", "SQLite", "BigQuery", "Snowflake",
			"Redshift", "ClickHouse", "Kafka", "RabbitMQ",
			// Cloud and DevOps
			"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform",
			"Ansible", "CI/CD", "Jenkins", "GitHub Actions", "ArgoCD", "Helm",
			"Linux", "Prometheus", "Grafana", "Datadog",
			// ML/AI
			"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch",
			"Keras", "scikit-learn", "NLP", "Computer Vision", "LLM",
			"Transformers", "Hugging Face", "RAG", "MLOps", "Spark", "Hadoop",
			"Airflow", "dbt", "Pandas", "NumPy",
			// Architecture and practices
			"Distributed Systems", "System Design", "Serverless", "Agile",
			"Scrum", "TDD", "Git",
		},
		SkillAliases: []SkillAlias{
			{Alias: "golang", Skill: "Go"},
			{Alias: "react.js", Skill: "React"},
			{Alias: "reactjs", Skill: "React"},
			{Alias: "vue.js", Skill: "Vue"},
			{Alias: "nodejs", Skill: "Node.js"},
			{Alias: "node", Skill: "Node.js"},
			{Alias: "postgres", Skill: "PostgreSQL"},
			{Alias: "k8s", Skill: "Kubernetes"},
			{Alias: "ml", Skill: "Machine Learning"},
			{Alias: "tensor flow", Skill: "TensorFlow"},
			{Alias: "scikit learn", Skill: "scikit-learn"},
			{Alias: "huggingface", Skill: "Hugging Face"},
			{Alias: "rest api", Skill: "REST"},
		},
		USTokens: []string{
			"united states", "usa", "u.s.", "u.s.a", "us", "california",
			"new york", "texas", "washington", "seattle", "san francisco",
			"chicago", "boston", "austin", "denver", "atlanta", "remote us",
		},
		IndiaTokens: []string{
			"india", "bengaluru", "bangalore", "mumbai", "hyderabad", "chennai",
			"pune", "delhi", "ncr", "noida", "gurgaon", "gurugram", "kolkata",
			"ahmedabad", "remote india",
		},
		RemoteTokens: []string{"remote", "work from home", "wfh", "distributed"},
		HybridTokens: []string{"hybrid"},
		OnsiteTokens: []string{"on-site", "onsite", "in-office", "in office"},
		ExperienceRules: []ExperienceRule{
			{Level: models.ExperienceStaff, Keywords: []string{
				"staff engineer", "staff software", "staff level", "8+ years",
				"9+ years",
			}},
			{Level: models.ExperiencePrincipal, Keywords: []string{
				"principal", "distinguished", "fellow", "10+ years", "12+ years",
				"15+ years",
			}},
			{Level: models.ExperienceManager, Keywords: []string{
				"manager", "director", "vp", "head of",
			}},
			{Level: models.ExperienceEntry, Keywords: []string{
				"junior", "entry", "entry-level", "associate", "new grad",
				"0-2 years", "fresher", "intern",
			}},
			{Level: models.ExperienceSenior, Keywords: []string{
				"senior", "sr.", "sr ", "5+ years", "6+ years", "7+ years",
				"experienced",
			}},
			{Level: models.ExperienceMid, Keywords: []string{
				"mid-level", "intermediate", "2+ years", "3+ years", "2-5 years",
				"3-5 years",
			}},
		},
		AIKeywords: []string{
			"ai", "artificial intelligence", "machine learning", "deep learning",
			"llm", "large language model", "genai", "generative ai", "rag",
			"embedding", "embeddings", "prompt", "fine-tuning", "transformer",
			"neural network", "copilot", "openai", "anthropic",
		},
	}
}
