package domain

// Snapshot описывает сырой ответ поставщика, сохранённый в S3 для разбора инцидентов
type Snapshot struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string // Example: "application/json"
}

func NewSnapshot(bucket, objectKey string, data []byte, contentType string) *Snapshot {
	return &Snapshot{
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Data:        data,
		ContentType: contentType,
	}
}

// Size возвращает размер содержимого в байтах.
func (s *Snapshot) Size() int64 {
	return int64(len(s.Data))
}
