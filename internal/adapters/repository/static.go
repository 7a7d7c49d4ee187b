package repository

import (
	"context"

	"github.com/okian/dormscore/internal/domain/model"
)

const facilityNote = "(2026-1학기 시설현황 기준)"

var staticDormitories = []model.Dormitory{
	{
		ID:               "namje",
		Name:             "남제관",
		NameEn:           "Namje Hall",
		Tags:             []string{"#학부전용", "#남성전용"},
		CompetitionBadge: "재학생 경쟁 치열",
		Description:      "학부 재학생 남학생 및 외국인 남학생이 거주할 수 있는 기숙사입니다.",
		Capacity:         "총 688명",
		CapacityNote:     facilityNote,
		TotalPeople:      688,
		RoomType:         "2인실 / 4인실",
		Features:         []string{"학부 재학생 남학생 전용", "외국인 남학생 입주 가능", "캠퍼스 내 위치"},
		Rooms:            model.RoomBreakdown{Double: 4, Quad: 170},
		Area:             "6,579㎡",
		Notes: []string{
			"2027년 6월 행복기숙사 완공과 함께 철거 예정",
			"구축 건물로 시설이 상대적으로 오래되었습니다",
			"4인실 비중이 98.8%로 대부분을 차지합니다",
		},
	},
	{
		ID:           "yongji",
		Name:         "용지관",
		NameEn:       "Yongji Hall",
		Tags:         []string{"#대학원가능", "#남성전용"},
		Description:  "학부 및 대학원 남학생이 거주할 수 있는 기숙사입니다.",
		Capacity:     "총 490명",
		CapacityNote: facilityNote,
		TotalPeople:  490,
		RoomType:     "2인실 / 4인실",
		Features:     []string{"학부 남학생", "일반대학원 남학생", "캠퍼스 인근"},
		Rooms:        model.RoomBreakdown{Double: 31, Quad: 107},
		Area:         "5,415㎡",
	},
	{
		ID:           "hwahong",
		Name:         "화홍관",
		NameEn:       "Hwahong Hall",
		Tags:         []string{"#외국인전용", "#남녀공용"},
		Description:  "외국인 학생 전용 기숙사입니다.",
		Capacity:     "총 390명",
		CapacityNote: facilityNote,
		TotalPeople:  390,
		RoomType:     "1인실 / 2인실 / 4인실",
		Features:     []string{"외국인 전용", "남녀 모두 입주 가능", "국제교류 활성화"},
		Rooms:        model.RoomBreakdown{Single: 10, Double: 94, Quad: 48},
		Area:         "5,874㎡",
	},
	{
		ID:           "gwanggyo",
		Name:         "광교관",
		NameEn:       "Gwanggyo Hall",
		Tags:         []string{"#여성전용", "#신축"},
		Description:  "학부 여학생, 간호대 여학생, 대학원 여학생이 거주할 수 있습니다.",
		Capacity:     "총 552명",
		CapacityNote: facilityNote,
		TotalPeople:  552,
		RoomType:     "2인실 / 4인실",
		Features:     []string{"학부 여학생", "간호대 여학생", "대학원 여학생", "신축 건물"},
		Rooms:        model.RoomBreakdown{Double: 32, Quad: 122},
		Area:         "6,645㎡",
	},
	{
		ID:               "international",
		Name:             "국제학사",
		NameEn:           "International House",
		Tags:             []string{"#남녀공용", "#다양한대상"},
		CompetitionBadge: "다양한 지원자",
		Description:      "학부생, 외국인, 일반대학원생이 거주할 수 있는 기숙사입니다.",
		Capacity:         "총 408명",
		CapacityNote:     facilityNote,
		TotalPeople:      408,
		RoomType:         "2인실",
		Features:         []string{"학부생 (남/여)", "외국인 (남/여)", "일반대학원 (남/여)"},
		Rooms:            model.RoomBreakdown{Double: 204},
		Area:             "10,096㎡",
	},
	{
		ID:           "ilsin",
		Name:         "일신관",
		NameEn:       "Ilsin Hall",
		Tags:         []string{"#남녀공용", "#전문대학원"},
		Description:  "학부생 및 전문대학원생이 거주할 수 있는 기숙사입니다.",
		Capacity:     "총 751명",
		CapacityNote: facilityNote,
		TotalPeople:  751,
		RoomType:     "1인실 / 2인실 / 3인실 / 4인실",
		Features:     []string{"학부생 (남/여)", "법학전문대학원", "의대", "간호대"},
		Rooms:        model.RoomBreakdown{Single: 59, Double: 270, Triple: 4, Quad: 35},
		Area:         "14,228㎡",
	},
}

// StaticProvider serves the bundled catalog. It never fails and has no notices.
type StaticProvider struct{}

// NewStaticProvider creates a StaticProvider.
func NewStaticProvider() *StaticProvider { return &StaticProvider{} }

// Dormitories returns a deep copy of the bundled catalog.
func (*StaticProvider) Dormitories(_ context.Context) ([]model.Dormitory, error) {
	out := make([]model.Dormitory, len(staticDormitories))
	for i, d := range staticDormitories {
		out[i] = d.Clone()
	}
	return out, nil
}

// Notices always returns an empty list.
func (*StaticProvider) Notices(_ context.Context, _ int, _ model.NoticeCategory) ([]model.Notice, error) {
	return []model.Notice{}, nil
}

// Dormitory looks up one entry of catalog by id.
func Dormitory(catalog []model.Dormitory, id string) (model.Dormitory, error) {
	for _, d := range catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Dormitory{}, ErrNotFound
}
