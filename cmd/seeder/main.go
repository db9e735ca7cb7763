package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/ailsahq/grantseek"
	"github.com/ailsahq/grantseek/core"
	"github.com/ailsahq/grantseek/ingestion"
)

// seedDocument is one section of a grant call document in a seed file.
type seedDocument struct {
	DocType string `json:"doc_type"`
	Text    string `json:"text"`
}

// seedGrant is the human-editable form of a grant record. Seed files are a
// JSON array of these.
type seedGrant struct {
	Id           string         `json:"id"`
	Title        string         `json:"title"`
	Source       string         `json:"source"`
	Description  string         `json:"description"`
	URL          string         `json:"url"`
	Status       string         `json:"status"`
	TotalFundGBP int64          `json:"total_fund_gbp"`
	OpensAt      string         `json:"opens_at"`
	ClosesAt     string         `json:"closes_at"`
	Eligibility  *float64       `json:"eligibility"`
	Documents    []seedDocument `json:"documents"`
}

var samples = []seedGrant{
	{
		Id:           "innovate_uk:2201",
		Title:        "Smart Grants: Autumn Round",
		Source:       "innovate_uk",
		Description:  "Funding for game-changing and commercially viable R&D innovation that can significantly impact the UK economy.",
		URL:          "https://apply-for-innovation-funding.service.gov.uk/competition/2201",
		Status:       "open",
		TotalFundGBP: 25_000_000,
		ClosesAt:     "2026-11-25T11:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "Innovate UK, part of UK Research and Innovation, is investing up to £25 million in the best game-changing and commercially viable innovative or disruptive ideas. All proposals must be business focused. Applications can come from any area of technology and be applied to any part of the economy."},
			{DocType: "eligibility", Text: "To lead a project your organisation must be a UK registered business of any size, and collaborate with other UK registered organisations if applying for a project with total costs above £100,000. Academic institutions cannot lead."},
			{DocType: "scope", Text: "Your project must demonstrate a clear game-changing or disruptive innovation leading to new products, processes or services, and a strong and deliverable business plan that addresses market potential and needs."},
		},
	},
	{
		Id:           "innovate_uk:2245",
		Title:        "Biomedical Catalyst: Industry-Led R&D",
		Source:       "innovate_uk",
		Description:  "Grant funding for UK SMEs developing innovative solutions to health and healthcare challenges.",
		URL:          "https://apply-for-innovation-funding.service.gov.uk/competition/2245",
		Status:       "open",
		TotalFundGBP: 30_000_000,
		ClosesAt:     "2026-12-10T11:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "The Biomedical Catalyst supports the development of innovative healthcare products, technologies and processes. Up to £30 million is available for feasibility and primer awards to UK registered SMEs."},
			{DocType: "eligibility", Text: "You must be a UK registered small or medium-sized enterprise. Projects can be single or collaborative. Research organisations can participate as collaborators but cannot lead."},
			{DocType: "scope", Text: "Projects must address a clearly defined health or healthcare challenge, including disease prevention, earlier diagnosis, tailored treatments and advanced therapies."},
		},
	},
	{
		Id:           "nihr:1023",
		Title:        "NIHR Invention for Innovation (i4i) Product Development Award",
		Source:       "nihr",
		Description:  "Translational funding for medical devices, in vitro diagnostics and digital health technologies with NHS relevance.",
		URL:          "https://www.nihr.ac.uk/funding/i4i-product-development-awards",
		Status:       "open",
		TotalFundGBP: 0,
		ClosesAt:     "2027-01-14T13:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "The i4i Product Development Award supports the translation of medical technologies towards clinical use in the NHS. There is no upper funding limit; awards typically range from £500,000 to £1.5 million over two to three years."},
			{DocType: "eligibility", Text: "Open to UK-based SMEs, NHS providers and higher education institutions. Applications must involve collaboration between at least two of these sectors and demonstrate a credible route to NHS adoption."},
			{DocType: "scope", Text: "Technologies must have demonstrated proof of concept and address an area of existing or emerging healthcare need, including medical devices, in vitro diagnostics and digital health products."},
		},
	},
	{
		Id:           "ukri:3310",
		Title:        "Future Leaders Fellowships: Round 10",
		Source:       "ukri",
		Description:  "Long-term fellowship support for early career researchers and innovators tackling ambitious programmes.",
		URL:          "https://www.ukri.org/opportunity/future-leaders-fellowships-round-10",
		Status:       "open",
		TotalFundGBP: 100_000_000,
		ClosesAt:     "2026-12-03T16:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "The Future Leaders Fellowships scheme supports talented people in universities, businesses and other research and innovation environments. Each fellowship provides up to seven years of funding for ambitious research or innovation programmes."},
			{DocType: "eligibility", Text: "Applicants can be from anywhere in the world but must be hosted by an eligible UK organisation. There are no eligibility rules based on years since PhD; the scheme targets early career researchers and innovators."},
			{DocType: "scope", Text: "Proposals are welcome across all of UKRI's remit, including interdisciplinary and business-led research and innovation in any field."},
		},
	},
	{
		Id:           "epsrc:4407",
		Title:        "EPSRC Artificial Intelligence Hubs",
		Source:       "epsrc",
		Description:  "Large-scale research hubs advancing artificial intelligence for science, engineering and real-world applications.",
		URL:          "https://www.ukri.org/opportunity/ai-hubs",
		Status:       "open",
		TotalFundGBP: 80_000_000,
		ClosesAt:     "2026-10-21T16:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "EPSRC is investing £80 million in research hubs that will advance artificial intelligence and machine learning methods and their application to scientific and engineering challenges of national importance."},
			{DocType: "eligibility", Text: "Standard EPSRC eligibility applies. UK higher education institutions and approved research organisations can lead. Meaningful industrial collaboration is expected, with partners contributing cash or in-kind support."},
			{DocType: "scope", Text: "Hubs must deliver world-leading research in AI for science, engineering or mathematical foundations, train the next generation of AI researchers, and build pathways to real-world deployment."},
		},
	},
	{
		Id:           "wellcome:5150",
		Title:        "Wellcome Discovery Awards",
		Source:       "wellcome",
		Description:  "Flexible funding for established researchers pursuing bold and creative research ideas in health.",
		URL:          "https://wellcome.org/grant-funding/schemes/discovery-awards",
		Status:       "open",
		TotalFundGBP: 0,
		ClosesAt:     "2027-02-09T17:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "Discovery Awards provide funding for established researchers and teams from any discipline who want to pursue bold and creative research ideas to deliver significant shifts in understanding that could improve human life, health and wellbeing."},
			{DocType: "eligibility", Text: "Lead applicants must hold a salaried position at an eligible organisation, or a fellowship that covers the award duration. Organisations can be based in the UK, Republic of Ireland or a low- or middle-income country."},
			{DocType: "scope", Text: "Research can be in any discipline, including science, technology, engineering, mathematics, social science and the humanities, provided it addresses human life, health and wellbeing."},
		},
	},
	{
		Id:           "innovate_uk:2318",
		Title:        "Farming Innovation Programme: Feasibility Studies",
		Source:       "innovate_uk",
		Description:  "Feasibility funding to develop innovative solutions improving productivity and sustainability in English agriculture.",
		URL:          "https://apply-for-innovation-funding.service.gov.uk/competition/2318",
		Status:       "closed",
		TotalFundGBP: 7_500_000,
		ClosesAt:     "2025-06-11T11:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "Working with Defra, Innovate UK invested up to £7.5 million in feasibility projects to develop bold and ambitious solutions that improve the productivity, sustainability and resilience of farming in England."},
			{DocType: "eligibility", Text: "To lead a project you must be a UK registered business and collaborate with at least one farmer, grower or forester based in England."},
		},
	},
	{
		Id:           "ukri:3422",
		Title:        "Quantum Technologies for Fundamental Physics",
		Source:       "ukri",
		Description:  "Funding for research exploiting quantum technologies to answer fundamental questions in physics.",
		URL:          "https://www.ukri.org/opportunity/quantum-technologies-for-fundamental-physics",
		Status:       "open",
		TotalFundGBP: 14_000_000,
		ClosesAt:     "2026-11-05T16:00:00Z",
		Documents: []seedDocument{
			{DocType: "overview", Text: "This programme funds research consortia that apply quantum sensing, timing and computing technologies to fundamental physics questions such as the nature of dark matter and gravitational waves."},
			{DocType: "eligibility", Text: "UK higher education institutions and approved independent research organisations are eligible to lead. International collaborators may participate at their own cost."},
			{DocType: "scope", Text: "Proposals must demonstrate how quantum technology enables measurements or analyses that would otherwise be impossible, with a credible path to a fundamental physics result."},
		},
	},
}

var seedFileName = flag.String("src", "", "JSON file of seed grants")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// toGrant converts a seed record into the stored form.
func (s *seedGrant) toGrant() (*core.Grant, error) {
	grant := &core.Grant{
		Id:           core.GrantID(s.Id),
		Title:        s.Title,
		Source:       s.Source,
		Description:  s.Description,
		URL:          s.URL,
		TotalFundGBP: s.TotalFundGBP,
	}

	switch s.Status {
	case "open":
		grant.Status = core.StatusOpen
	case "closed":
		grant.Status = core.StatusClosed
	default:
		return nil, fmt.Errorf("grant %s: unknown status %q", s.Id, s.Status)
	}

	if s.OpensAt != "" {
		opens, err := time.Parse(time.RFC3339, s.OpensAt)
		if err != nil {
			return nil, fmt.Errorf("grant %s: bad opens_at: %w", s.Id, err)
		}
		grant.OpensAt = opens
	}
	if s.ClosesAt != "" {
		closes, err := time.Parse(time.RFC3339, s.ClosesAt)
		if err != nil {
			return nil, fmt.Errorf("grant %s: bad closes_at: %w", s.Id, err)
		}
		grant.ClosesAt = closes
	}

	if s.Eligibility != nil {
		grant.EligibilitySignal = *s.Eligibility
		grant.HasEligibilitySignal = true
	}

	return grant, nil
}

func (s *seedGrant) documents() []ingestion.Document {
	docs := make([]ingestion.Document, 0, len(s.Documents))
	for _, doc := range s.Documents {
		docs = append(docs, ingestion.Document{DocType: doc.DocType, Text: doc.Text})
	}
	return docs
}

// grantsFromFile returns an iterator over grants in a JSON seed file.
func grantsFromFile(filename string) (iter.Seq[seedGrant], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var grants []seedGrant
	if err := json.Unmarshal(data, &grants); err != nil {
		return nil, err
	}
	return grantsFromSlice(grants), nil
}

// grantsFromSlice returns an iterator over a slice of seed grants.
func grantsFromSlice(grants []seedGrant) iter.Seq[seedGrant] {
	return func(yield func(seedGrant) bool) {
		for _, grant := range grants {
			if !yield(grant) {
				return
			}
		}
	}
}

// ingestAll reads from a source iterator and ingests each grant with its
// documents.
func ingestAll(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[seedGrant]) error {
	for seed := range source {
		grant, err := seed.toGrant()
		if err != nil {
			return err
		}
		if err := pipeline.IngestGrant(ctx, grant, seed.documents()...); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", grant.Id, err)
		}
		slog.Info("seeded grant", "id", grant.Id, "documents", len(seed.Documents))
	}
	return nil
}

func main() {
	db, err := grantseek.NewDatabase("./grants_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[seedGrant]
	if seedFileName != nil && *seedFileName != "" {
		source, err = grantsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = grantsFromSlice(samples)
	}

	if err := ingestAll(ctx, pipeline, source); err != nil {
		panic(err)
	}
}
