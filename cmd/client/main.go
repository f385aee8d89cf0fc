package main

import (
	"context"
	"os"

	"github.com/MKhiriev/bookmark-sync/internal/cli"
	"github.com/MKhiriev/bookmark-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))
	os.Exit(cli.Execute(context.Background(), buildInfo, os.Args[1:], os.Stdout, os.Stderr))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
