package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - InterviewSession from session.go
// - Recording, Transcript from recording.go
// - InterviewMetric from metric.go

// Database schema overview:
// 1. interview_sessions - One row per interview, keyed by interview_id,
//    carrying scores, status, the frozen conversation log, and denormalized
//    pointers to the latest recording/transcript
// 2. recordings - Egress exports of interview rooms (recording -> completed|failed)
// 3. transcripts - Zero-or-one transcript pointer per session
// 4. interview_metrics - Append-only (metric_name, metric_value) log per session
