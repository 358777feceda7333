package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionIDValidator(t *testing.T) {
	assert.NoError(t, TransactionIDValidator("123456789012"))
	assert.ErrorIs(t, TransactionIDValidator(""), ErrTransactionIDEmpty)
	assert.ErrorIs(t, TransactionIDValidator("12345678901"), ErrTransactionIDInvalid)
	assert.ErrorIs(t, TransactionIDValidator("1234567890123"), ErrTransactionIDInvalid)
	assert.ErrorIs(t, TransactionIDValidator("12345678901x"), ErrTransactionIDInvalid)
	assert.ErrorIs(t, TransactionIDValidator("１２３４５６７８９０１２"), ErrTransactionIDInvalid)
}

func TestAmountValidator(t *testing.T) {
	assert.NoError(t, AmountValidator(1))
	assert.ErrorIs(t, AmountValidator(0), ErrAmountInvalid)
	assert.ErrorIs(t, AmountValidator(-5), ErrAmountInvalid)
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestFileValidator(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%some pdf bytes")

	status, f, err := FileValidator(fileHeader(t, "doc.pdf", pdf), 1024, nil)
	require.NoError(t, err)
	defer f.File.Close()

	assert.Zero(t, status)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, "doc.pdf", f.Name)
	assert.EqualValues(t, len(pdf), f.Size)

	// Rewound after sniffing
	buf := make([]byte, 4)
	_, err = f.File.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(buf))
}

func TestFileValidatorRejects(t *testing.T) {
	status, _, err := FileValidator(nil, 10, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ErrorIs(t, err, ErrNoFile)

	status, _, err = FileValidator(fileHeader(t, "big.txt", bytes.Repeat([]byte("a"), 11)), 10, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	status, _, err = FileValidator(fileHeader(t, strings.Repeat("n", 201)+".txt", []byte("a")), 10, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ErrorIs(t, err, ErrFileNameTooLong)

	status, _, err = FileValidator(fileHeader(t, "empty.txt", nil), 10, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ErrorIs(t, err, ErrEmptyFile)

	status, _, err = FileValidator(fileHeader(t, "note.txt", []byte("plain text")), 100, []string{"application/pdf"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}
