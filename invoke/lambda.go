package invoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
)

// LambdaAPI is the part of *lambda.Client used by LambdaInvoker.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

var _ LambdaAPI = (*lambda.Client)(nil)

// LambdaInvoker invokes AWS Lambda functions synchronously.
type LambdaInvoker struct {
	api LambdaAPI
}

func NewLambdaInvoker(api LambdaAPI) *LambdaInvoker {
	return &LambdaInvoker{api: api}
}

// LoadLambdaInvoker builds a LambdaInvoker from the default AWS credential
// and region chain (environment, shared config, instance role).
func LoadLambdaInvoker(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (*LambdaInvoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewLambdaInvoker(lambda.NewFromConfig(cfg)), nil
}

func (l *LambdaInvoker) Invoke(ctx context.Context, function string, payload []byte) ([]byte, error) {
	out, err := l.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(function),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, err
	}

	// The function ran but raised; Lambda still answers 200 with the error
	// document as payload.
	if out.FunctionError != nil {
		return nil, newFunctionError(function, aws.ToString(out.FunctionError), out.Payload)
	}
	return out.Payload, nil
}

// FunctionError is returned when the remote function itself failed.
type FunctionError struct {
	Function string
	Kind     string // "Unhandled" or "Handled"
	Type     string
	Message  string
}

func newFunctionError(function, kind string, payload []byte) *FunctionError {
	fe := &FunctionError{Function: function, Kind: kind}

	var doc struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorType    string `json:"errorType"`
	}
	if err := json.Unmarshal(payload, &doc); err == nil {
		fe.Type = doc.ErrorType
		fe.Message = doc.ErrorMessage
	} else {
		fe.Message = string(payload)
	}
	return fe
}

func (e *FunctionError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("function %s failed (%s): %s: %s", e.Function, e.Kind, e.Type, e.Message)
	}
	return fmt.Sprintf("function %s failed (%s): %s", e.Function, e.Kind, e.Message)
}

// ErrorCode returns a short classification of a channel error for logs and
// metrics: the AWS API error code, the function error type, or "".
func ErrorCode(err error) string {
	var fe *FunctionError
	if errors.As(err, &fe) {
		if fe.Type != "" {
			return fe.Type
		}
		return "FunctionError"
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	if errors.Is(err, ErrFunctionNotFound) {
		return "ResourceNotFoundException"
	}
	return ""
}
