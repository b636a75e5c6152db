package aws_client_interfaces

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type UnmockedCallToAwsApiClient struct {
	AwsClient  string
	MethodCall string
}

func (e *UnmockedCallToAwsApiClient) Error() string {
	return fmt.Sprintf(
		"received call to %s.%s with no mock added",
		e.AwsClient,
		e.MethodCall,
	)
}

type UnexpectedInputToAwsApiClientMethod struct {
	MethodCall    string
	ExpectedInput *s3.PutObjectInput
	ActualInput   *s3.PutObjectInput
}

func (e *UnexpectedInputToAwsApiClientMethod) Error() string {
	return fmt.Sprintf(
		"received unexpected input to S3.%s\n\nExpected: bucket=%v key=%v\n\nActual: bucket=%v key=%v",
		e.MethodCall,
		deref(e.ExpectedInput.Bucket),
		deref(e.ExpectedInput.Key),
		deref(e.ActualInput.Bucket),
		deref(e.ActualInput.Key),
	)
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
