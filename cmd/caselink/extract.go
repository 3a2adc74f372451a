package main

import (
	"context"

	"github.com/tenantwatch/caselink/internal/app"
)

// runExtract fetches every pleading document that has no stored text yet and
// extracts the PDF contents
func runExtract(application *app.App) error {
	return application.Extractor.ProcessPendingDocuments(context.Background())
}
