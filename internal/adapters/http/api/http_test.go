package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/dormscore/internal/adapters/http/api"
	"github.com/okian/dormscore/internal/adapters/repository"
	"github.com/okian/dormscore/internal/domain/eligibility"
	"github.com/okian/dormscore/internal/domain/model"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const testSecret = "s3cret"

// Mock dependencies that implements the Dependencies interface
type mockDependencies struct {
	lastInput   scoring.Input
	lastLimit   int
	lastPath    string
	lastTag     string
	catalogErr  error
	revalidErr  error
	noticeErr   error
	noticeCount int
}

func (m *mockDependencies) Score(_ context.Context, in scoring.Input) types.ScoreResult {
	m.lastInput = in
	b := scoring.Compute(in)
	return types.ScoreResult{Mode: in.Mode, Breakdown: b, LevelInfo: types.NewLevelInfo(b.TotalScore)}
}

func (m *mockDependencies) Level(total int) types.LevelInfo {
	return types.NewLevelInfo(total)
}

func (m *mockDependencies) Eligibility(_ context.Context, g eligibility.Gender, t eligibility.StudentType) (types.EligibilityView, error) {
	if m.catalogErr != nil {
		return types.EligibilityView{}, m.catalogErr
	}
	return types.EligibilityView{Gender: g, StudentType: t, Eligible: eligibility.Resolve(g, t)}, nil
}

func (m *mockDependencies) Criteria(context.Context) types.CriteriaView {
	return types.CriteriaView{ScoreCriteria: model.DefaultScoreCriteria("2026-1")}
}

func (m *mockDependencies) Regions() scoring.RegionPolicy {
	return scoring.DefaultRegionPolicy()
}

func (m *mockDependencies) Dormitories(ctx context.Context) ([]types.DormitoryView, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	catalog, _ := repository.NewStaticProvider().Dormitories(ctx)
	out := make([]types.DormitoryView, len(catalog))
	for i, d := range catalog {
		out[i] = types.NewDormitoryView(d)
	}
	return out, nil
}

func (m *mockDependencies) Dormitory(ctx context.Context, id string) (types.DormitoryView, error) {
	catalog, _ := repository.NewStaticProvider().Dormitories(ctx)
	d, err := repository.Dormitory(catalog, id)
	if err != nil {
		return types.DormitoryView{}, err
	}
	return types.NewDormitoryView(d), nil
}

func (m *mockDependencies) Notices(_ context.Context, limit int, _ model.NoticeCategory) ([]model.Notice, error) {
	m.lastLimit = limit
	if m.noticeErr != nil {
		return nil, m.noticeErr
	}
	out := make([]model.Notice, 0, m.noticeCount)
	for i := range m.noticeCount {
		out = append(out, model.Notice{ID: int64(i + 1), Title: "notice", Category: model.CategoryGeneral})
	}
	return out, nil
}

func (m *mockDependencies) Revalidate(_ context.Context, path, tag string) ([]string, error) {
	m.lastPath, m.lastTag = path, tag
	if m.revalidErr != nil {
		return nil, m.revalidErr
	}
	var out []string
	if path != "" {
		out = append(out, "path:"+path)
	}
	if tag != "" {
		out = append(out, "tag:"+tag)
	}
	return out, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	opts = append([]api.Option{api.WithRevalidationSecret(testSecret)}, opts...)
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.NewDecoder(w.Body).Decode(&out), ShouldBeNil)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then health endpoint should be accessible", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("And metrics endpoint should expose the registry", func() {
			serve(mux, http.MethodGet, "/healthz", "")
			w := serve(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "dorm_score_http_requests_total")
		})

		Convey("And stats endpoint should be accessible", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("And every v1 route should answer", func() {
			for _, target := range []string{
				"/v1/score/level?total=70",
				"/v1/eligibility?gender=male&type=enrolled",
				"/v1/criteria",
				"/v1/regions",
				"/v1/dormitories",
				"/v1/dormitories/namje",
				"/v1/notices",
			} {
				So(serve(mux, http.MethodGet, target, "").Code, ShouldEqual, http.StatusOK)
			}
		})

		Convey("And unknown routes should not be found", func() {
			w := serve(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods should not be found", func() {
			So(serve(mux, http.MethodGet, "/v1/score", "").Code, ShouldEqual, http.StatusNotFound)
			So(serve(mux, http.MethodPost, "/v1/criteria", "{}").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoreHandler(t *testing.T) {
	Convey("Given a score endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When posting a valid general request", func() {
			w := serve(mux, http.MethodPost, "/v1/score",
				`{"mode":"general","gpa":4.3,"region":"제주","volunteer_completed":true,"education_completed":true}`)

			Convey("Then the breakdown is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["total_score"], ShouldEqual, 100)
				So(body["level"], ShouldEqual, "excellent")
				So(body["label"], ShouldEqual, "매우 유리")
				So(deps.lastInput.Region, ShouldEqual, "제주")
			})
		})

		Convey("When the mode is omitted or mixed case", func() {
			serve(mux, http.MethodPost, "/v1/score", `{"gpa":3.0}`)
			So(deps.lastInput.Mode, ShouldEqual, scoring.ModeGeneral)

			serve(mux, http.MethodPost, "/v1/score", `{"mode":" Financial ","gpa":3.0,"financial_raw_score":40}`)
			So(deps.lastInput.Mode, ShouldEqual, scoring.ModeFinancialHardship)
			So(deps.lastInput.FinancialRawScore, ShouldEqual, 40)
		})

		Convey("When the financial raw score is out of range", func() {
			low := serve(mux, http.MethodPost, "/v1/score", `{"mode":"financial","gpa":3.0,"financial_raw_score":-5}`)
			high := serve(mux, http.MethodPost, "/v1/score", `{"mode":"financial","gpa":3.0,"financial_raw_score":999}`)

			Convey("Then it is clamped rather than rejected", func() {
				So(low.Code, ShouldEqual, http.StatusOK)
				So(decode(low)["financial_score"], ShouldEqual, 0)
				So(high.Code, ShouldEqual, http.StatusOK)
				So(decode(high)["financial_score"], ShouldEqual, scoring.FinancialScore(60))
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/v1/score", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body has unknown fields", func() {
			w := serve(mux, http.MethodPost, "/v1/score", `{"gpa":3.0,"applicant_id":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When validation fails", func() {
			for _, body := range []string{
				`{}`,
				`{"gpa":4.6}`,
				`{"gpa":-1}`,
				`{"gpa":3.0,"mode":"lottery"}`,
			} {
				w := serve(mux, http.MethodPost, "/v1/score", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "validation_error")
			}
		})
	})
}

func TestScoreHandler_Level(t *testing.T) {
	Convey("Given a level endpoint", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When the total is a number", func() {
			w := serve(mux, http.MethodGet, "/v1/score/level?total=55", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["level"], ShouldEqual, "average")
		})

		Convey("When the total is missing", func() {
			w := serve(mux, http.MethodGet, "/v1/score/level", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEligibilityHandler(t *testing.T) {
	Convey("Given an eligibility endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When querying a male freshman", func() {
			w := serve(mux, http.MethodGet, "/v1/eligibility?gender=male&type=freshman", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["eligible"], ShouldResemble, []any{"yongji", "international", "ilsin"})
		})

		Convey("When the gender is invalid", func() {
			w := serve(mux, http.MethodGet, "/v1/eligibility?gender=any&type=freshman", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the student type is invalid", func() {
			w := serve(mux, http.MethodGet, "/v1/eligibility?gender=female&type=postdoc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the catalog fails", func() {
			deps.catalogErr = errors.New("store down")
			w := serve(mux, http.MethodGet, "/v1/eligibility?gender=female&type=law", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given catalog endpoints", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When fetching a dormitory", func() {
			w := serve(mux, http.MethodGet, "/v1/dormitories/ilsin", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["id"], ShouldEqual, "ilsin")
			So(body["beds"], ShouldEqual, 751)
		})

		Convey("When the dormitory does not exist", func() {
			w := serve(mux, http.MethodGet, "/v1/dormitories/nowhere", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When the id has extra segments", func() {
			w := serve(mux, http.MethodGet, "/v1/dormitories/namje/rooms", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing fails", func() {
			deps.catalogErr = errors.New("store down")
			w := serve(mux, http.MethodGet, "/v1/dormitories", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When fetching criteria and regions", func() {
			w := serve(mux, http.MethodGet, "/v1/criteria", "")
			So(decode(w)["max_grade"], ShouldEqual, 60)

			w = serve(mux, http.MethodGet, "/v1/regions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["buckets"], ShouldHaveLength, 3)
		})
	})
}

func TestNoticesHandler(t *testing.T) {
	Convey("Given a notices endpoint with a maximum of 20", t, func() {
		deps := &mockDependencies{noticeCount: 2}
		mux := newMux(deps, api.WithNoticeLimitMax(20))

		Convey("When no limit is given", func() {
			w := serve(mux, http.MethodGet, "/v1/notices", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 10)
		})

		Convey("When a limit and category are given", func() {
			w := serve(mux, http.MethodGet, "/v1/notices?limit=5&category=result", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 5)
		})

		Convey("When the limit exceeds the maximum", func() {
			w := serve(mux, http.MethodGet, "/v1/notices?limit=21", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When the limit is invalid", func() {
			So(serve(mux, http.MethodGet, "/v1/notices?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/v1/notices?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the category is unknown", func() {
			So(serve(mux, http.MethodGet, "/v1/notices?category=sports", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			deps.noticeErr = errors.New("store down")
			So(serve(mux, http.MethodGet, "/v1/notices", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestRevalidateHandler(t *testing.T) {
	Convey("Given a revalidation webhook", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		post := func(auth, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(body))
			if auth != "" {
				req.Header.Set("Authorization", auth)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When the secret matches", func() {
			w := post("Bearer "+testSecret, `{"path":"/dorms","tag":"notices"}`)

			Convey("Then the revalidated targets are echoed with a timestamp", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["revalidated"], ShouldResemble, []any{"path:/dorms", "tag:notices"})
				So(body["now"], ShouldNotBeEmpty)
				So(deps.lastPath, ShouldEqual, "/dorms")
			})
		})

		Convey("When the secret is wrong or missing", func() {
			So(post("Bearer nope", `{"path":"/"}`).Code, ShouldEqual, http.StatusUnauthorized)
			So(post("", `{"path":"/"}`).Code, ShouldEqual, http.StatusUnauthorized)
			So(post(testSecret, `{"path":"/"}`).Code, ShouldEqual, http.StatusUnauthorized)
			So(deps.lastPath, ShouldBeEmpty)
		})

		Convey("When the body is not JSON", func() {
			w := post("Bearer "+testSecret, `not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When neither path nor tag is given", func() {
			w := post("Bearer "+testSecret, `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "provide path or tag")
		})

		Convey("When the tag is unknown", func() {
			deps.revalidErr = repository.ErrUnknownTag
			w := post("Bearer "+testSecret, `{"tag":"rankings"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "unknown_tag")
		})

		Convey("When the cache fails", func() {
			deps.revalidErr = errors.New("redis down")
			So(post("Bearer "+testSecret, `{"tag":"notices"}`).Code, ShouldEqual, http.StatusInternalServerError)
		})
	})

	Convey("Given a webhook without a configured secret", t, func() {
		server := api.NewServer(&mockDependencies{}, &mockStatsProvider{})
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(`{"path":"/"}`))
		req.Header.Set("Authorization", "Bearer ")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		So(w.Code, ShouldEqual, http.StatusUnauthorized)
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should return OK status", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]any{
				"scoreComputations": 1000,
				"catalogReads":      150,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["scoreComputations"], ShouldEqual, 1000)
				So(body["catalogReads"], ShouldEqual, 150)
			})
		})
	})
}
