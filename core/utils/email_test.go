package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_AddressesRecipients(t *testing.T) {
	raw := buildMessage("tuyensinh@uni.edu.vn", EmailMessage{
		To:      []string{"a@st.edu.vn", "b@st.edu.vn"},
		Subject: "Phản hồi yêu cầu hỗ trợ",
		Body:    "Nội dung phản hồi",
	})

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, headers, "From: tuyensinh@uni.edu.vn\r\n")
	assert.Contains(t, headers, "To: a@st.edu.vn, b@st.edu.vn\r\n")
	assert.Contains(t, headers, "Subject: Phản hồi yêu cầu hỗ trợ")
	assert.Equal(t, "Nội dung phản hồi", body)
}

func TestBuildMessage_SingleRecipient(t *testing.T) {
	raw := buildMessage("tuyensinh@uni.edu.vn", EmailMessage{
		To:      []string{"a@st.edu.vn"},
		Subject: "Xác nhận lịch hẹn",
		Body:    "Lịch hẹn đã được xác nhận",
	})

	assert.Contains(t, raw, "To: a@st.edu.vn\r\n")
}
