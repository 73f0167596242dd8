package scoring

import "strings"

// Ranking is the qualitative label derived from the overall percentage.
type Ranking string

const (
	Unrated   Ranking = "Chưa xếp loại"
	Excellent Ranking = "Xuất Sắc"
	Pass      Ranking = "Đạt"
	Fail      Ranking = "Không Đạt"
)

const (
	excellentThreshold = 90
	passThreshold      = 70
)

// RankFor maps an overall percentage to a ranking. Zero means nothing has been
// rated yet, which is not the same as failing.
func RankFor(percent int) Ranking {
	switch {
	case percent == 0:
		return Unrated
	case percent >= excellentThreshold:
		return Excellent
	case percent >= passThreshold:
		return Pass
	default:
		return Fail
	}
}

// Tone is the CSS token used to colour the ranking badge.
func (r Ranking) Tone() string {
	switch r {
	case Excellent:
		return "excellent"
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	}
	return "none"
}

// Upper is the badge text.
func (r Ranking) Upper() string {
	return strings.ToUpper(string(r))
}

// Band is one row of the ranking legend shown under the form.
type Band struct {
	Title       string
	Range       string
	Description string
	Tone        string
}

func RankingBands() []Band {
	return []Band{
		{
			Title:       "XUẤT SẮC",
			Range:       "90 - 100%",
			Description: "Hoàn thành xuất sắc nhiệm vụ, không xảy ra sự cố, tuân thủ tuyệt đối quy trình.",
			Tone:        Excellent.Tone(),
		},
		{
			Title:       "ĐẠT YÊU CẦU",
			Range:       "70 - 90%",
			Description: "Hoàn thành nhiệm vụ được giao, còn sai sót nhỏ nhưng đã khắc phục kịp thời.",
			Tone:        Pass.Tone(),
		},
		{
			Title:       "KHÔNG ĐẠT",
			Range:       "< 70%",
			Description: "Vi phạm quy trình vận hành, để xảy ra sự cố nghiêm trọng hoặc thiếu trách nhiệm.",
			Tone:        Fail.Tone(),
		},
	}
}
