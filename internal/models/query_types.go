// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeJobDetails            QueryType = "job_details"
	QueryTypeEmployerJobs          QueryType = "employer_jobs"
	QueryTypeCandidateApplications QueryType = "candidate_applications"
	QueryTypeJobApplications       QueryType = "job_applications"
	QueryTypeSavedJobs             QueryType = "saved_jobs"
	QueryTypeConversationMessages  QueryType = "conversation_messages"
	QueryTypeGroupAnnouncements    QueryType = "group_announcements"
	QueryTypeLeaveApplications     QueryType = "leave_applications"
	QueryTypeBGVDocuments          QueryType = "bgv_documents"
)

const (
	SearchTypeJobSearch       QueryType = "job_search"
	SearchTypeSimilarJobs     QueryType = "similar_jobs"
	SearchTypeCandidateSearch QueryType = "candidate_search"
)
