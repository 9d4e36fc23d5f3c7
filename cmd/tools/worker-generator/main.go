// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"job-portal-workers/pkg/registry"
)

const module = "job-portal-workers"

// Field is one generated struct field.
type Field struct {
	Name    string
	Type    string
	JSON    string
	Comment string
}

type ErrorDef struct {
	Var     string
	Code    string
	Retries int
}

// WorkerData feeds the templates.
type WorkerData struct {
	Module       string
	ID           string
	Dir          string
	PackageName  string
	TaskType     string
	TimeoutExpr  string
	InputFields  []Field
	OutputFields []Field
	Errors       []ErrorDef
}

// retryableCodes get the activity's retries; every other code fails without retry.
var retryableCodes = map[string]bool{
	"DATABASE_CONNECTION_FAILED":      true,
	"ELASTICSEARCH_CONNECTION_FAILED": true,
	"NOTIFICATION_SEND_FAILED":        true,
	"IDENTITY_PROVIDER_ERROR":         true,
	"STORE_ERROR":                     true,
}

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., toggle-saved-job)")
	outputDir := flag.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator -activity <id> [-output <dir>] [-registry <path>] [-force]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}
	a, err := reg.Find(*activity)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	files, err := generate(*a, *outputDir, *force)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("Generated %s\n", f)
	}
	fmt.Println("\nNext: implement Execute, then register the handler in cmd/worker-manager/main.go.")
}

// generate writes the worker package and returns the written paths.
func generate(a registry.Activity, outputDir string, force bool) ([]string, error) {
	data, err := newWorkerData(a)
	if err != nil {
		return nil, err
	}
	workerDir := filepath.Join(outputDir, data.Dir, a.ID)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	templates := []struct{ name, body string }{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
		{"handler_test.go", testTemplate},
	}

	var written []string
	for _, t := range templates {
		path := filepath.Join(workerDir, t.name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s exists, use -force to overwrite", path)
		}

		tmpl, err := template.New(t.name).Parse(t.body)
		if err != nil {
			return written, fmt.Errorf("parse template %s: %w", t.name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return written, fmt.Errorf("render %s: %w", t.name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return written, fmt.Errorf("format %s: %w", t.name, err)
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func newWorkerData(a registry.Activity) (*WorkerData, error) {
	if a.ID == "" || a.TaskType == "" {
		return nil, errors.New("activity needs id and taskType")
	}

	timeout := 10 * time.Second
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", a.Timeout, err)
		}
		timeout = d
	}

	data := &WorkerData{
		Module:       module,
		ID:           a.ID,
		Dir:          categoryDir(a.Category),
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		TimeoutExpr:  durationExpr(timeout),
		InputFields:  fieldsFromSchema(a.InputSchema),
		OutputFields: fieldsFromSchema(a.OutputSchema),
	}
	for _, code := range a.ErrorCodes {
		retries := 0
		if retryableCodes[code] {
			retries = a.Retries
		}
		data.Errors = append(data.Errors, ErrorDef{Var: errVarName(code), Code: code, Retries: retries})
	}
	return data, nil
}

// fieldsFromSchema reads the top-level properties of a JSON schema, sorted by name.
func fieldsFromSchema(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	fields := make([]Field, 0, len(props))
	for name, raw := range props {
		details, _ := raw.(map[string]interface{})
		desc, _ := details["description"].(string)
		fields = append(fields, Field{
			Name:    exportName(name),
			Type:    goType(details["type"]),
			JSON:    name,
			Comment: desc,
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSON < fields[j].JSON })
	return fields
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	}
	return "interface{}"
}

// exportName turns jobId into JobID and salary_range into SalaryRange.
func exportName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	s := b.String()
	if strings.HasSuffix(s, "Id") {
		s = strings.TrimSuffix(s, "Id") + "ID"
	}
	return s
}

// errVarName turns JOB_NOT_FOUND into ErrJobNotFound.
func errVarName(code string) string {
	var b strings.Builder
	b.WriteString("Err")
	for _, p := range strings.Split(strings.ToLower(code), "_") {
		if p != "" {
			b.WriteString(strings.ToUpper(p[:1]) + p[1:])
		}
	}
	return b.String()
}

func durationExpr(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// categoryDir maps registry categories to internal/workers subdirectories.
func categoryDir(category string) string {
	switch category {
	case "authentication":
		return "auth"
	case "business-logic":
		return "jobs"
	case "ai-ml":
		return "moderation"
	case "":
		return "misc"
	}
	return strings.ToLower(category)
}
