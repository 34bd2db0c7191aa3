package attributes

// Category groups vocabulary skills the way they are reported.
type Category string

const (
	CategoryProgramming Category = "programming"
	CategoryFrameworks  Category = "frameworks"
	CategoryDatabases   Category = "databases"
	CategoryCloud       Category = "cloud"
	CategoryTools       Category = "tools"
	CategoryCustom      Category = "custom"
)

type vocabularyGroup struct {
	category Category
	terms    []string
}

var defaultVocabulary = []vocabularyGroup{
	{CategoryProgramming, []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "go", "rust", "php", "ruby",
		"scala", "kotlin", "swift", "objective-c", "r", "matlab", "sql",
	}},
	{CategoryFrameworks, []string{
		"react", "angular", "vue", "nodejs", "express", "django", "flask", "spring", "laravel",
		"rails", "asp.net", "nextjs", "nuxtjs", "svelte", "fastapi",
	}},
	{CategoryDatabases, []string{
		"mysql", "postgresql", "mongodb", "redis", "elasticsearch", "cassandra", "oracle",
		"sqlite", "dynamodb", "firebase",
	}},
	{CategoryCloud, []string{
		"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins", "github actions",
		"gitlab ci", "circleci",
	}},
	{CategoryTools, []string{
		"git", "jira", "confluence", "slack", "figma", "postman", "insomnia", "vs code",
		"intellij", "vim", "nginx", "apache",
	}},
}

// educationLevel is one keyword of the ordinal education vocabulary.
type educationLevel struct {
	keyword string
	rank    int
}

// Declaration order matters: on equal rank the earlier keyword wins.
var educationLevels = []educationLevel{
	{"phd", 5},
	{"ph.d", 5},
	{"doctorate", 5},
	{"masters", 4},
	{"master", 4},
	{"msc", 4},
	{"mba", 4},
	{"bachelor", 3},
	{"bachelors", 3},
	{"bsc", 3},
	{"ba", 3},
	{"associate", 2},
	{"diploma", 2},
	{"certificate", 1},
	{"certification", 1},
	{"high school", 0},
	{"none", 0},
}

// MaxEducationRank is the rank of the highest education keyword.
const MaxEducationRank = 5
