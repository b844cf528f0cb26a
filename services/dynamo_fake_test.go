package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jkpcodes/discord-clone-backend/models"
)

// fakeDynamo is an in-memory DynamoDBAPI covering the expression shapes the
// services actually issue: single-equality key conditions, ADD on string
// sets, SET on a single attribute, and attribute_exists/attribute_not_exists
// conditions.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string][]map[string]types.AttributeValue

	// transactErr is returned (once) by the next TransactWriteItems call
	transactErr error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string][]map[string]types.AttributeValue)}
}

// newTestStore wires a DynamoService onto a fresh fake
func newTestStore() (*DynamoService, *fakeDynamo) {
	fake := newFakeDynamo()
	return &DynamoService{Client: fake}, fake
}

var fakeTableKeys = map[string][]string{
	models.UserProfilesTable:              {"userId"},
	models.FriendInvitation{}.TableName(): {"invitationId"},
	models.ConversationsTable:             {"participantKey"},
	models.MessagesTable:                  {"conversationId", "createdAt"},
	models.ServersTable:                   {"serverId"},
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	if attr, ok := item[name].(*types.AttributeValueMemberS); ok {
		return attr.Value, true
	}
	return "", false
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	clone := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		clone[k] = v
	}
	return clone
}

func keyMatches(item, key map[string]types.AttributeValue) bool {
	for name := range key {
		want, _ := stringAttr(key, name)
		got, ok := stringAttr(item, name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (f *fakeDynamo) findLocked(table string, key map[string]types.AttributeValue) (int, map[string]types.AttributeValue) {
	for i, item := range f.tables[table] {
		if keyMatches(item, key) {
			return i, item
		}
	}
	return -1, nil
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue)
	for _, name := range fakeTableKeys[table] {
		key[name] = item[name]
	}
	return key
}

// parseEquality handles the "attr = :ref" key-condition form
func parseEquality(expr string) (attr, ref string) {
	parts := strings.SplitN(expr, "=", 2)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func conditionHolds(cond string, existing map[string]types.AttributeValue) bool {
	cond = strings.TrimSpace(cond)
	switch {
	case strings.HasPrefix(cond, "attribute_exists("):
		attr := strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_exists("), ")")
		return existing != nil && existing[attr] != nil
	case strings.HasPrefix(cond, "attribute_not_exists("):
		attr := strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_not_exists("), ")")
		return existing == nil || existing[attr] == nil
	}
	return true
}

// applyUpdate handles "ADD attr :ref" (string-set union) and
// "SET attr = :ref"
func applyUpdate(item map[string]types.AttributeValue, expr string, values map[string]types.AttributeValue) {
	fields := strings.Fields(expr)
	switch fields[0] {
	case "ADD":
		attr, ref := fields[1], fields[2]
		added := values[ref].(*types.AttributeValueMemberSS)
		existing := []string{}
		if current, ok := item[attr].(*types.AttributeValueMemberSS); ok {
			existing = append(existing, current.Value...)
		}
		for _, member := range added.Value {
			found := false
			for _, have := range existing {
				if have == member {
					found = true
					break
				}
			}
			if !found {
				existing = append(existing, member)
			}
		}
		item[attr] = &types.AttributeValueMemberSS{Value: existing}
	case "SET":
		attr, ref := fields[1], fields[3]
		item[attr] = values[ref]
	}
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	attr, ref := parseEquality(aws.ToString(params.KeyConditionExpression))
	want, _ := stringAttr(params.ExpressionAttributeValues, ref)

	var matched []map[string]types.AttributeValue
	for _, item := range f.tables[aws.ToString(params.TableName)] {
		if got, ok := stringAttr(item, attr); ok && got == want {
			matched = append(matched, cloneItem(item))
		}
	}

	if params.ScanIndexForward != nil {
		descending := !*params.ScanIndexForward
		sort.Slice(matched, func(i, j int) bool {
			a, _ := stringAttr(matched[i], "createdAt")
			b, _ := stringAttr(matched[j], "createdAt")
			if descending {
				return a > b
			}
			return a < b
		})
	}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: matched}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, item := f.findLocked(aws.ToString(params.TableName), params.Key)
	if item == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.putLocked(aws.ToString(params.TableName), params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) putLocked(table string, item map[string]types.AttributeValue) {
	stored := cloneItem(item)
	if i, _ := f.findLocked(table, f.keyOf(table, stored)); i >= 0 {
		f.tables[table][i] = stored
		return
	}
	f.tables[table] = append(f.tables[table], stored)
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := aws.ToString(params.TableName)
	i, item := f.findLocked(table, params.Key)
	if params.ConditionExpression != nil && !conditionHolds(*params.ConditionExpression, item) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	if item == nil {
		item = cloneItem(params.Key)
		f.tables[table] = append(f.tables[table], item)
	} else {
		item = cloneItem(item)
		f.tables[table][i] = item
	}

	applyUpdate(item, aws.ToString(params.UpdateExpression), params.ExpressionAttributeValues)
	return &dynamodb.UpdateItemOutput{Attributes: cloneItem(item)}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	table := aws.ToString(params.TableName)
	i, item := f.findLocked(table, params.Key)
	if params.ConditionExpression != nil && !conditionHolds(*params.ConditionExpression, item) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	if i >= 0 {
		f.tables[table] = append(f.tables[table][:i], f.tables[table][i+1:]...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.tables[aws.ToString(params.TableName)] {
		items = append(items, cloneItem(item))
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

// TransactWriteItems checks every condition before applying anything, so a
// single failed condition leaves the whole store untouched.
func (f *fakeDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.transactErr != nil {
		err := f.transactErr
		f.transactErr = nil
		return nil, err
	}

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, entry := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}

		var table string
		var key map[string]types.AttributeValue
		var cond *string
		switch {
		case entry.Put != nil:
			table = aws.ToString(entry.Put.TableName)
			key = f.keyOf(table, entry.Put.Item)
			cond = entry.Put.ConditionExpression
		case entry.Update != nil:
			table = aws.ToString(entry.Update.TableName)
			key = entry.Update.Key
			cond = entry.Update.ConditionExpression
		case entry.Delete != nil:
			table = aws.ToString(entry.Delete.TableName)
			key = entry.Delete.Key
			cond = entry.Delete.ConditionExpression
		}

		_, existing := f.findLocked(table, key)
		if cond != nil && !conditionHolds(*cond, existing) {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, entry := range params.TransactItems {
		switch {
		case entry.Put != nil:
			f.putLocked(aws.ToString(entry.Put.TableName), entry.Put.Item)
		case entry.Update != nil:
			table := aws.ToString(entry.Update.TableName)
			i, item := f.findLocked(table, entry.Update.Key)
			if item == nil {
				item = cloneItem(entry.Update.Key)
				f.tables[table] = append(f.tables[table], item)
			} else {
				item = cloneItem(item)
				f.tables[table][i] = item
			}
			applyUpdate(item, aws.ToString(entry.Update.UpdateExpression), entry.Update.ExpressionAttributeValues)
		case entry.Delete != nil:
			table := aws.ToString(entry.Delete.TableName)
			if i, _ := f.findLocked(table, entry.Delete.Key); i >= 0 {
				f.tables[table] = append(f.tables[table][:i], f.tables[table][i+1:]...)
			}
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
