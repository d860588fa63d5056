// Where: internal/store/dynamodb.go
// What: DynamoDB-backed document store adapter.
// Why: Map the document namespace contract (database/container/partition key)
// onto tables reachable through an emulator or live endpoint.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/importer"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
)

// recordPartitionAttr is the attribute the DomainRecord partition key
// marshals to; containers declaring a different partition-key path get the
// value remapped at write time.
const recordPartitionAttr = "filePath"

// DynamoDocumentStore implements ensure.DocumentStore and importer.ItemWriter
// against a DynamoDB-compatible endpoint. A database maps to a table-name
// prefix; a container maps to a table "<database>.<container>".
type DynamoDocumentStore struct {
	client        *dynamodb.Client
	partitionPath string
}

var (
	_ ensure.DocumentStore = (*DynamoDocumentStore)(nil)
	_ importer.ItemWriter  = (*DynamoDocumentStore)(nil)
)

// NewDynamoDocumentStore builds the adapter for one resolved target.
func NewDynamoDocumentStore(target resolver.ConnectionTarget, partitionKeyPath string) *DynamoDocumentStore {
	client := dynamodb.NewFromConfig(target.Config, func(options *dynamodb.Options) {
		if target.Endpoint != "" {
			options.BaseEndpoint = aws.String(target.Endpoint)
		}
	})
	return &DynamoDocumentStore{client: client, partitionPath: partitionKeyPath}
}

// EnsureDatabase confirms the account behind the endpoint answers. DynamoDB
// has no separate database object; a successful listing doubles as the
// existence check for the logical database.
func (s *DynamoDocumentStore) EnsureDatabase(ctx context.Context, database string) error {
	if strings.TrimSpace(database) == "" {
		return fmt.Errorf("database name is required")
	}
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("confirm database %s: %w", database, err)
	}
	return nil
}

// ListContainers returns the containers of a database, derived from the
// table-name prefix.
func (s *DynamoDocumentStore) ListContainers(ctx context.Context, database string) ([]string, error) {
	prefix := database + "."
	var names []string
	paginator := dynamodb.NewListTablesPaginator(s.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, table := range page.TableNames {
			if strings.HasPrefix(table, prefix) {
				names = append(names, strings.TrimPrefix(table, prefix))
			}
		}
	}
	return names, nil
}

// CreateContainer creates the table for a container with the declared
// partition-key attribute hashed and the record identifier as range key.
func (s *DynamoDocumentStore) CreateContainer(ctx context.Context, database, container, partitionKeyPath string) error {
	pkAttr := partitionKeyAttribute(partitionKeyPath)
	_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName(database, container)),
		BillingMode: dynamodbtypes.BillingModePayPerRequest,
		KeySchema: []dynamodbtypes.KeySchemaElement{
			{AttributeName: aws.String(pkAttr), KeyType: dynamodbtypes.KeyTypeHash},
			{AttributeName: aws.String("id"), KeyType: dynamodbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []dynamodbtypes.AttributeDefinition{
			{AttributeName: aws.String(pkAttr), AttributeType: dynamodbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("id"), AttributeType: dynamodbtypes.ScalarAttributeTypeS},
		},
	})
	if err != nil {
		var inUse *dynamodbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			return fmt.Errorf("table %s: %w", tableName(database, container), ensure.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// WriteItem performs a single create-item write.
func (s *DynamoDocumentStore) WriteItem(ctx context.Context, ns ensure.NamespaceHandle, rec record.DomainRecord) error {
	item, err := documentItem(rec, s.partitionPath)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName(ns.Database, ns.Container)),
		Item:      item,
	})
	return err
}

func tableName(database, container string) string {
	return database + "." + container
}

// partitionKeyAttribute turns a partition-key path like "/filePath" into the
// attribute name the store keys on.
func partitionKeyAttribute(path string) string {
	attr := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if attr == "" {
		return recordPartitionAttr
	}
	return attr
}

// documentItem marshals a record and remaps the partition value onto the
// container's declared attribute when it differs from the record default.
func documentItem(rec record.DomainRecord, partitionKeyPath string) (map[string]dynamodbtypes.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	if attr := partitionKeyAttribute(partitionKeyPath); attr != recordPartitionAttr {
		item[attr] = item[recordPartitionAttr]
		delete(item, recordPartitionAttr)
	}
	return item, nil
}
