package models

// Task is a dashboard study task. Tasks are display data only.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	DueDate     string
}

// Activity is a recent-activity line on the parent dashboard
type Activity struct {
	Task      string
	Completed bool
	When      string
}

// ChildProgress summarises a child's task completion for the parent dashboard
type ChildProgress struct {
	Name           string
	TotalTasks     int
	CompletedTasks int
	RecentActivity []Activity
}

// Progress returns the completion percentage rounded to the nearest integer
func (p ChildProgress) Progress() int {
	return Percent(p.CompletedTasks, p.TotalTasks)
}

// Percent returns done/total as a whole percentage, 0 when total is 0
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (done*100 + total/2) / total
}
