package main

import (
	"context"

	"github.com/tenantwatch/caselink/internal/app"
)

// runReconcile re-derives judgment rows from every stored judgment document,
// picking up parser improvements without another portal crawl
func runReconcile(application *app.App) error {
	return application.Judgments.ReconcileAll(context.Background())
}
