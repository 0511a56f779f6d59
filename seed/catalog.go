package seed

import "github.com/talentbase/talentbase/store"

// Fixed catalogs for synthetic data. Job creation cycles through these, so a
// requested count above catalog size yields duplicate titles on purpose.

var jobTitles = []string{
	"Frontend Developer", "Backend Engineer", "Full Stack Developer", "DevOps Engineer",
	"Data Scientist", "Machine Learning Engineer", "Product Manager", "UI/UX Designer",
	"QA Engineer", "Mobile App Developer", "Cloud Architect", "Security Analyst",
	"Business Analyst", "Technical Writer", "Solutions Architect", "Database Administrator",
	"Game Developer", "AI Researcher", "Systems Engineer", "Site Reliability Engineer",
	"Project Manager", "IT Support Specialist", "Network Engineer", "Software Engineer Intern",
	"Blockchain Developer",
}

var jobTypes = []store.JobType{
	store.JobTypeFullTime, store.JobTypePartTime, store.JobTypeContract, store.JobTypeInternship,
}

var locations = []string{
	"San Francisco, CA", "New York, NY", "London, UK", "Berlin, Germany",
	"Toronto, Canada", "Bangalore, India", "Remote",
}

var jobRequirements = map[string][]string{
	"Frontend Developer": {"Proficiency in React, Vue, or Angular", "Strong knowledge of HTML, CSS, and JavaScript"},
	"Backend Engineer":   {"Experience with Node.js, Python, or Java", "Understanding of RESTful APIs"},
	"Data Scientist":     {"Strong knowledge of Python and ML libraries", "Experience with data visualization"},
	"Product Manager":    {"Strong communication skills", "Experience with agile methodologies"},
}

var defaultRequirements = []string{"Bachelor's degree in relevant field", "Strong problem-solving skills"}

var jobSkills = map[string][]string{
	"Frontend Developer":        {"React", "TypeScript", "Next.js", "CSS"},
	"Backend Engineer":          {"Node.js", "PostgreSQL", "Docker", "AWS"},
	"Full Stack Developer":      {"React", "Node.js", "GraphQL", "Prisma"},
	"DevOps Engineer":           {"Kubernetes", "Terraform", "CI/CD", "GCP"},
	"Data Scientist":            {"Python", "Pandas", "PyTorch", "SciKit-Learn"},
	"UI/UX Designer":            {"Figma", "Adobe XD", "User Research"},
	"Mobile App Developer":      {"React Native", "Swift", "Kotlin"},
	"Cloud Architect":           {"AWS", "Azure", "Serverless"},
	"Machine Learning Engineer": {"Python", "TensorFlow", "NLP"},
}

var defaultSkills = []string{"Agile", "Jira", "Git", "Scrum"}

var firstNames = []string{"Ashish", "Shikhar", "Ayush", "Sophia", "Michael", "Emma", "Daniel", "Olivia", "James", "Ava"}

var lastNames = []string{"Smith", "Johnson", "Brown", "Taylor", "Anderson", "Clark", "Lewis", "Walker", "Young", "King"}

var assessmentQuestions = []store.Question{
	{ID: "q1", Text: "How many years of professional experience do you have in this field?", Options: []string{"0-1", "2-4", "5-8", "9+"}},
	{ID: "q2", Text: "Which work arrangement do you prefer?", Options: []string{"Onsite", "Hybrid", "Remote", "No preference"}},
	{ID: "q3", Text: "How soon could you start?", Options: []string{"Immediately", "2 weeks", "1 month", "3+ months"}},
}

func requirementsFor(title string) []string {
	if reqs, ok := jobRequirements[title]; ok {
		return reqs
	}
	return defaultRequirements
}

func skillsFor(title string) []string {
	if skills, ok := jobSkills[title]; ok {
		return skills
	}
	return defaultSkills
}
