package util

const (
	// DateFormat 挑战按日计数使用的日期粒度
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 学习资料上传相关常量
const (
	MimePDF         = "application/pdf"
	MimeImage       = "image/"
	MimeAudio       = "audio/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedMaterialExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".png", ".jpg", ".jpeg", ".mp3", ".txt"}
)
