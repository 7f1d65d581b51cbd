// Package db_test contains integration tests for SurrealDB operations.
// A SurrealDB container is started once for the whole package; tests skip
// when no container runtime is available.
package db_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/productlens/labelcheck/internal/db"
	"github.com/productlens/labelcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testEmbedDim = 8

var testDB *db.Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		// No container runtime; every test skips via requireDB.
		log.Printf("skipping db integration tests: %v", err)
		os.Exit(m.Run())
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = db.NewClient(ctx, db.Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx, testEmbedDim); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func requireDB(t *testing.T) context.Context {
	t.Helper()
	if testDB == nil {
		t.Skip("no container runtime available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// unitEmbedding returns a deterministic test vector whose dominant axis is i.
func unitEmbedding(i int) []float32 {
	embedding := make([]float32, testEmbedDim)
	embedding[i%testEmbedDim] = 1.0
	return embedding
}

func strPtr(s string) *string { return &s }

func testRecord() *models.ProductRecord {
	record := models.NewProductRecord([]string{"https://example.com/front.jpg"})
	record.ProductTitle = strPtr("Test Noodles")
	record.Status = models.StatusPersisted
	record.OCRData.MRP = strPtr("Rs. 15.00")
	record.OCRData.NetQuantity = strPtr("70 g")
	record.Compliance = models.Compliance{
		Status:     models.ComplianceCompliant,
		Violations: []models.Violation{},
		Reasoning:  "ok",
	}
	return record
}

func TestInsertAndGetProduct(t *testing.T) {
	ctx := requireDB(t)

	id, err := testDB.InsertProduct(ctx, testRecord())
	require.NoError(t, err, "should insert product")
	require.NotEmpty(t, id)

	stored, err := testDB.GetProduct(ctx, id)
	require.NoError(t, err, "should fetch product")

	assert.Equal(t, "Test Noodles", *stored.ProductTitle)
	assert.Equal(t, models.StatusPersisted, stored.Status)
	assert.Equal(t, "Rs. 15.00", *stored.OCRData.MRP)
	assert.Equal(t, models.ComplianceCompliant, stored.Compliance.Status)
	assert.Nil(t, stored.OCRData.Manufacturer, "absent fields stay nil")
}

func TestGetProduct_NotFound(t *testing.T) {
	ctx := requireDB(t)

	_, err := testDB.GetProduct(ctx, "doesnotexist")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRuleChunkLifecycle(t *testing.T) {
	ctx := requireDB(t)

	require.NoError(t, testDB.DeleteRuleChunks(ctx))

	chunks := []models.RuleChunkInput{
		{Text: "Rule one: declare net quantity.", Embedding: unitEmbedding(0), Position: 0, Source: "test"},
		{Text: "Rule two: declare retail price.", Embedding: unitEmbedding(1), Position: 1, Source: "test"},
		{Text: "Rule three: declare manufacturer.", Embedding: unitEmbedding(2), Position: 2, Source: "test"},
	}
	require.NoError(t, testDB.InsertRuleChunks(ctx, chunks))

	count, err := testDB.CountRuleChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// KNN search: the query vector matches chunk 1's axis.
	results, err := testDB.SearchRuleChunks(ctx, unitEmbedding(1), 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Rule two: declare retail price.", results[0].Text)
	assert.Len(t, results[0].Embedding, testEmbedDim, "embeddings returned for diversity re-selection")

	require.NoError(t, testDB.DeleteRuleChunks(ctx))
	count, err = testDB.CountRuleChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "rebuild path starts from an empty collection")
}

func TestCountRuleChunks_Empty(t *testing.T) {
	ctx := requireDB(t)

	require.NoError(t, testDB.DeleteRuleChunks(ctx))
	count, err := testDB.CountRuleChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
