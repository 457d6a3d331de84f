package model

// Article 是一条静态的推荐阅读链接。
type Article struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// DefaultArticles 是进程启动时加载的文章列表，运行期间只读。
var DefaultArticles = []Article{
	{Name: "Texas Tech University", Link: "https://www.depts.ttu.edu/rise/Blog/midsemesterslump.php"},
	{Name: "George Fox University", Link: "https://blogs.georgefox.edu/dlgp/screened-lives-kehidupan-yang-disaring/"},
	{Name: "NC State Extension", Link: "https://news.ces.ncsu.edu/digital-detox-finding-the-balance-in-a-hyper-connected-world/"},
	{Name: "Boston University", Link: "https://www.bu.edu/articles/2023/social-media-adolescent-health-report/"},
	{Name: "University of Utah Health", Link: "https://healthcare.utah.edu/healthfeed/2023/01/impact-of-social-media-teens-mental-health"},
	{Name: "University of Utah Health", Link: "https://healthcare.utah.edu/the-scope/kids-zone/all/2024/10/social-media-taking-over-your-teens-life-what-you-can-do-about-it"},
	{Name: "University of Texas Permian Basin", Link: "https://online.utpb.edu/about-us/articles/psychology/thriving-in-the-digital-age-how-technology-influences-our-behavior/"},
	{Name: "Ohio State University", Link: "https://u.osu.edu/emotionalfitness/?p=621"},
	{Name: "Penn State University", Link: "https://sites.psu.edu/aspsy/2024/10/23/tick-tock/"},
	{Name: "University of Richmond", Link: "https://jolt.richmond.edu/2024/03/06/tiktok-brain-can-we-save-childrens-attention-spans/"},
	{Name: "George Mason University", Link: "https://graduate.gmu.edu/news/2022-11/why-am-i-tired-because-i-am-tired"},
	{Name: "Mercy University", Link: "https://career.mercy.edu/blog/2025/02/24/8-ways-to-spot-burnout-before-it-derails-your-career/"},
	{Name: "University of Massachusetts Boston", Link: "https://blogs.umb.edu/undercurrents/2025/08/18/the-dystopian-landscape-of-short-form-content/"},
	{Name: "Harvard Health Publishing", Link: "https://www.health.harvard.edu/blog/staying-focused-in-the-era-of-digital-distractions-2020060920152"},
	{Name: "Harvard Summer School", Link: "https://summer.harvard.edu/blog/need-a-break-from-social-media-heres-why-you-should/"},
	{Name: "UC Davis Health", Link: "https://health.ucdavis.edu/blog/cultivating-health/social-medias-impact-on-our-mental-health/2024/05"},
	{Name: "Holy Family University", Link: "https://www.holyfamily.edu/about/news-and-media/hfu-blog-network/tiktok-impact-attention-and-memory"},
	{Name: "Holy Family University", Link: "https://www.holyfamily.edu/about/news-and-media/hfu-blog-network/cognitive-and-emotional-consequences-hurry-sickness-how-constant-rushing-overloading-your-brain"},
}
