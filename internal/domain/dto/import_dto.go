package dto

import "time"

type ImportOptionsRequest struct {
	ValidateOnly   bool `json:"validate_only" form:"validate_only"`
	SkipInvalid    bool `json:"skip_invalid" form:"skip_invalid"`
	UpdateExisting bool `json:"update_existing" form:"update_existing"`
}

type RowErrorResponse struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type ImportResultResponse struct {
	ImportLogID string             `json:"import_log_id"`
	Total       int                `json:"total"`
	Imported    int                `json:"imported"`
	Updated     int                `json:"updated"`
	Invalid     int                `json:"invalid"`
	Duplicates  int                `json:"duplicates"`
	Processed   int                `json:"processed"`
	SuccessRate float64            `json:"success_rate"`
	Errors      []RowErrorResponse `json:"errors,omitempty"`
}

type ValidateImportResponse struct {
	Valid          bool     `json:"valid"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

type ColumnsResponse struct {
	Columns    []string `json:"columns"`
	ImportType string   `json:"import_type"`
}

type ImportLogResponse struct {
	ID                    string     `json:"id"`
	Filename              string     `json:"filename"`
	FileHash              string     `json:"file_hash,omitempty"`
	Status                string     `json:"status"`
	TotalRows             int        `json:"total_rows"`
	ImportedRows          int        `json:"imported_rows"`
	UpdatedRows           int        `json:"updated_rows"`
	InvalidRows           int        `json:"invalid_rows"`
	DuplicateRows         int        `json:"duplicate_rows"`
	StartedAt             time.Time  `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	ProcessingTimeSeconds float64    `json:"processing_time_seconds"`
}

type ImportHistoryResponse struct {
	Imports []ImportLogResponse `json:"imports"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

type ImportStatisticsResponse struct {
	TotalImports  int64  `json:"total_imports"`
	TotalRows     int64  `json:"total_rows"`
	TotalImported int64  `json:"total_imported"`
	TotalUpdated  int64  `json:"total_updated"`
	TotalInvalid  int64  `json:"total_invalid"`
	TotalFailed   int64  `json:"total_failed"`
	PeriodFrom    string `json:"period_from"`
	PeriodTo      string `json:"period_to"`
}
