// Package analytics aggregates quiz performance per topic and overall.
package analytics

// TopicScore is the mean score of all scored quizzes sharing a topic.
type TopicScore struct {
	Topic        string  `json:"topic"`
	AverageScore float64 `json:"averageScore"`
}

// Report is the derived analytics result for one user. It is recomputed on
// every fetch and never persisted.
type Report struct {
	IsEmpty        bool         `json:"isEmpty"`
	Message        string       `json:"message,omitempty"`
	TopicScores    []TopicScore `json:"topicScores,omitempty"`
	OverallAverage float64      `json:"overallAverage"`
	Feedback       string       `json:"feedback,omitempty"`
}
