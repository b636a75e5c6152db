package aws_client_interfaces

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type MockS3Client struct {
	mockPutObjectResponses []MockPutObjectResponse
	PutObjectBodies        [][]byte
	PutObjectInputs        []*s3.PutObjectInput
}

type MockPutObjectResponse struct {
	expectedInput *s3.PutObjectInput
	err           error
}

func NewMockS3Client() MockS3Client {
	return MockS3Client{
		mockPutObjectResponses: []MockPutObjectResponse{},
	}
}

func (mock *MockS3Client) AllMocksCalled() bool {
	return len(mock.mockPutObjectResponses) == 0
}

func (mock *MockS3Client) AddMockPutObjectResponse(expectedInput *s3.PutObjectInput) {
	mock.mockPutObjectResponses = append(mock.mockPutObjectResponses, MockPutObjectResponse{
		expectedInput: expectedInput,
	})
}

func (mock *MockS3Client) AddMockPutObjectError(expectedInput *s3.PutObjectInput, err error) {
	mock.mockPutObjectResponses = append(mock.mockPutObjectResponses, MockPutObjectResponse{
		expectedInput: expectedInput,
		err:           err,
	})
}

func (mock *MockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if len(mock.mockPutObjectResponses) == 0 {
		return nil, &UnmockedCallToAwsApiClient{
			AwsClient:  "S3",
			MethodCall: "PutObject",
		}
	}

	response := mock.mockPutObjectResponses[0]
	mock.mockPutObjectResponses = mock.mockPutObjectResponses[1:]

	if response.err != nil {
		return nil, response.err
	}

	if deref(response.expectedInput.Bucket) != deref(params.Bucket) || deref(response.expectedInput.Key) != deref(params.Key) {
		return nil, &UnexpectedInputToAwsApiClientMethod{
			MethodCall:    "PutObject",
			ExpectedInput: response.expectedInput,
			ActualInput:   params,
		}
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	mock.PutObjectBodies = append(mock.PutObjectBodies, body)
	mock.PutObjectInputs = append(mock.PutObjectInputs, params)

	return &s3.PutObjectOutput{}, nil
}
