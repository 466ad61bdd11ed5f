package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCatalog() *CatalogSchema {
	return &CatalogSchema{
		Courses: []CourseImport{
			{Name: "Algebra", Description: "Linear equations"},
			{Name: "Calculus", DependsOn: []string{"Algebra"}},
			{Name: "Mechanics", DependsOn: []string{"Algebra", "Calculus"}},
		},
	}
}

func TestValidateCatalog_Valid(t *testing.T) {
	errs := ValidateCatalog(validCatalog())
	assert.Empty(t, errs)
}

func TestValidateCatalog_Empty(t *testing.T) {
	errs := ValidateCatalog(&CatalogSchema{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no courses")
}

func TestValidateCatalog_MissingName(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{{Name: "  "}}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "courses[0].name is required")
}

func TestValidateCatalog_NameTooLong(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{{Name: strings.Repeat("x", 201)}}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "exceeds 200 characters")
}

func TestValidateCatalog_DescriptionTooLong(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "Algebra", Description: strings.Repeat("x", 1001)},
	}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "description exceeds 1000 characters")
}

func TestValidateCatalog_DuplicateName(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "Algebra"},
		{Name: "Algebra"},
	}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `duplicate name "Algebra"`)
}

func TestValidateCatalog_SelfDependency(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "Algebra", DependsOn: []string{"Algebra"}},
	}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "self-dependency")
}

func TestValidateCatalog_DuplicateDependency(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "Algebra"},
		{Name: "Calculus", DependsOn: []string{"Algebra", "Algebra"}},
	}}
	errs := ValidateCatalog(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `duplicate dependency "Algebra"`)
}

func TestValidateCatalog_ExternalDependencyAllowed(t *testing.T) {
	// A dependency naming no course in the file is left for the authority
	// to resolve.
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "Calculus", DependsOn: []string{"Algebra"}},
	}}
	errs := ValidateCatalog(schema)
	assert.Empty(t, errs)
}

func TestValidateCatalog_Cycle(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: "A", DependsOn: []string{"C"}},
		{Name: "B", DependsOn: []string{"A"}},
		{Name: "C", DependsOn: []string{"B"}},
	}}
	errs := ValidateCatalog(schema)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "circular dependency")
}

func TestValidateCatalog_CollectsAllErrors(t *testing.T) {
	schema := &CatalogSchema{Courses: []CourseImport{
		{Name: ""},
		{Name: "Calculus", DependsOn: []string{""}},
	}}
	errs := ValidateCatalog(schema)
	assert.Len(t, errs, 2)
}
