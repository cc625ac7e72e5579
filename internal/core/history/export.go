package history

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/language"
)

// exportHeader 导出表头，时间戳后固定六列数据
var exportHeader = []string{"Timestamp", "Duration (s)", "People", "Cars", "Trucks", "Buses", "Total Objects"}

var exportMatcher = language.NewMatcher([]language.Tag{
	language.Chinese, // 默认
	language.AmericanEnglish,
	language.BritishEnglish,
})

// timestampLayout 按客户端语言选择时间戳展示格式
func timestampLayout(tag language.Tag) string {
	_, idx, _ := exportMatcher.Match(tag)
	switch idx {
	case 1:
		return "01/02/2006 3:04:05 PM"
	case 2:
		return "02/01/2006 15:04:05"
	default:
		return "2006-01-02 15:04:05"
	}
}

// ExportCSV 将会话列表序列化为 CSV 文本，顺序与入参一致
// 空列表输出仅含表头，不视为错误
func ExportCSV(sessions []*Session, tag language.Tag) ([]byte, error) {
	layout := timestampLayout(tag)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, s := range sessions {
		row := []string{
			s.CreatedAt.Format(layout),
			strconv.Itoa(s.Duration),
			strconv.Itoa(s.People),
			strconv.Itoa(s.Cars),
			strconv.Itoa(s.Trucks),
			strconv.Itoa(s.Buses),
			strconv.Itoa(s.Total),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
