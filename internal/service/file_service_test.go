package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/config"
	"veridoc/internal/domain"
	"veridoc/internal/port"
	"veridoc/internal/service"
	"veridoc/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "eu-west-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 50,
		PresignExpiry: 3600,
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func TestFileService_Upload_Success_PDF(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	userID := uuid.New()
	file, header := createMultipartFile("invoice.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.amazonaws.com/test", ETag: "abc"}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusUploaded, result.Status)
	assert.Equal(t, domain.FileTypePDF, result.FileType)
	assert.Equal(t, "invoice.pdf", result.OriginalName)
	assert.Equal(t, userID, result.UploadedBy)
	assert.Equal(t, "test-bucket", result.S3Bucket)
	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_Upload_Success_PNG(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	file, header := createMultipartFile("scan.png", pngContent(), "image/png")
	defer file.Close()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FileTypePNG, result.FileType)
}

func TestFileService_Upload_UnsupportedExtension(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	file, header := createMultipartFile("notes.txt", []byte("plain text"), "text/plain")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	fileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFileService_Upload_ContentMismatch(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	// .pdf extension but plain-text content fails magic-byte detection.
	file, header := createMultipartFile("fake.pdf", []byte("just some text pretending"), "application/pdf")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileService_Upload_S3Failure(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	file, header := createMultipartFile("invoice.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)
	fileRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusFailed).Return(nil)

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		UploadedBy: uuid.New(),
		File:       file,
		Header:     header,
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	fileRepo.AssertCalled(t, "UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.FileStatusFailed)
}

func TestFileService_GetDownloadURL(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	fileID := uuid.New()
	fileRepo.On("GetByID", mock.Anything, fileID).Return(&domain.FileMeta{
		ID:       fileID,
		S3Bucket: "test-bucket",
		S3Key:    "files/abc/invoice.pdf",
	}, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", "files/abc/invoice.pdf", int64(3600)).
		Return("https://signed.example.com/invoice.pdf", nil)

	url, err := svc.GetDownloadURL(context.Background(), fileID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/invoice.pdf", url)
}

func TestFileService_Delete_RemovesObjectFirst(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(fileRepo, storage, &cfg)

	fileID := uuid.New()
	fileRepo.On("GetByID", mock.Anything, fileID).Return(&domain.FileMeta{
		ID:       fileID,
		S3Bucket: "test-bucket",
		S3Key:    "files/abc/invoice.pdf",
	}, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "files/abc/invoice.pdf").Return(nil)
	fileRepo.On("Delete", mock.Anything, fileID).Return(nil)

	err := svc.Delete(context.Background(), fileID)

	require.NoError(t, err)
	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}
