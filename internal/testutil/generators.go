// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/forgekit/s3mirror/s3types"
)

// TestDataGenerator provides methods for generating test data.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateObjectList generates a list of test S3 objects.
func (g *TestDataGenerator) GenerateObjectList(count int, prefix string) []types.Object {
	objects := make([]types.Object, count)
	baseTime := time.Now().Add(-24 * time.Hour)

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%sobject-%04d.txt", prefix, i)
		size := int64(g.rand.Intn(1000000) + 1000) // 1KB to 1MB
		modified := baseTime.Add(time.Duration(i) * time.Minute)
		objects[i] = CreateTestObject(key, size, modified)
	}

	return objects
}

// GenerateListing generates a bucket listing in the module's own object type.
func (g *TestDataGenerator) GenerateListing(count int, prefix string) []s3types.Object {
	objects := make([]s3types.Object, count)
	baseTime := time.Now().Add(-24 * time.Hour)

	for i := 0; i < count; i++ {
		objects[i] = s3types.Object{
			Key:          fmt.Sprintf("%sobject-%04d.txt", prefix, i),
			Size:         int64(g.rand.Intn(1000000) + 1000),
			LastModified: baseTime.Add(time.Duration(i) * time.Minute),
		}
	}

	return objects
}

// GeneratePagedListings splits objects into ListObjectsV2 pages of pageSize,
// chaining continuation tokens between them. The final page reports the
// listing as no longer truncated.
func (g *TestDataGenerator) GeneratePagedListings(objects []types.Object, pageSize int) []*s3.ListObjectsV2Output {
	if pageSize < 1 {
		pageSize = 1
	}

	var pages []*s3.ListObjectsV2Output
	for start := 0; start < len(objects) || len(pages) == 0; start += pageSize {
		end := start + pageSize
		if end > len(objects) {
			end = len(objects)
		}
		truncated := end < len(objects)
		token := ""
		if truncated {
			token = fmt.Sprintf("token-%d", end)
		}
		pages = append(pages, CreateListObjectsV2Output(objects[start:end], truncated, token))
	}

	return pages
}
