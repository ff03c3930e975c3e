package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to embedded defaults. Files are created lazily on first
// Load so the constructor does no I/O.
//
// Watch invalidates the cache when a prompt file changes, so edits take
// effect without restarting the listener.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains the embedded default prompts. The pipeline
// serves a Vietnamese-language shop; the prompts are written in
// Vietnamese and instruct the model to answer customers accordingly.
//
// Placeholders are Go fmt verbs, filled positionally by the assistant:
// classify(subject, body), intent(text), plan_search(body),
// evaluate(body, listings), reply(subject, body, listings).
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptClassify: `Phân tích nội dung email sau và phân loại mục đích chính của nó.
Các danh mục phân loại là:
- SPAM: Email rác không mong muốn, email lừa đảo, quảng cáo hoặc các câu hỏi hoàn toàn không liên quan đến cửa hàng kinh doanh
- PROCESS: Email hợp lệ từ khách hàng như yêu cầu hỗ trợ, phản hồi, hoặc câu hỏi cần xử lý.

Tiêu đề Email: %s
Nội dung Email:
---
%s
---

Dựa *chỉ* vào văn bản đã cung cấp, trả về *chỉ* một phân loại: SPAM hoặc PROCESS. Không thêm giải thích gì.
Phân loại:`,

	driven.PromptIntent: `Phân tích nội dung văn bản sau và phân loại mục đích chính của nó.
Các danh mục phân loại là:
- faq: Câu hỏi về các vấn đề chung, chính sách, dịch vụ, hướng dẫn sử dụng cơ bản, hoặc các câu hỏi không đề cập đến một sản phẩm cụ thể.
- product: Câu hỏi hoặc yêu cầu thông tin liên quan đến một hoặc nhiều sản phẩm cụ thể (ví dụ: thông số kỹ thuật, giá, so sánh sản phẩm, tình trạng còn hàng, yêu cầu tư vấn mua sản phẩm).

Nội dung văn bản:
---
%s
---

Dựa *chỉ* vào văn bản đã cung cấp, trả về *chỉ* một phân loại: faq hoặc product. Không thêm giải thích gì.
Phân loại:`,

	driven.PromptPlanSearch: `Bạn là một chuyên gia về API tìm kiếm của eBay Browse API (endpoint /item_summary/search).
Dựa vào nội dung email của khách hàng, hãy xác định các tham số tìm kiếm phù hợp nhất để gọi API này.
Mục tiêu là tìm kiếm các sản phẩm liên quan đến yêu cầu của khách hàng trên eBay.

Đối với tham số 'q' trong kết quả JSON, hãy tuân thủ các quy tắc sau để kết hợp nhiều từ khóa:
- Sử dụng dấu cách để phân tách các từ khóa khi bạn muốn tìm kiếm các mục bao gồm TẤT CẢ các từ khóa (AND request). Ví dụ: để tìm "iphone" VÀ "ipad", giá trị 'q' phải là ` + "`\"iphone ipad\"`" + `.
- Sử dụng dấu phẩy được bao quanh bởi dấu ngoặc đơn để phân tách các từ khóa khi bạn muốn tìm kiếm các mục bao gồm BẤT KỲ từ khóa nào trong danh sách (OR request). Ví dụ: để tìm "iphone" HOẶC "ipad", giá trị 'q' phải là ` + "`\"(iphone, ipad)\"`" + `.

Dưới đây là mô tả các tham số tìm kiếm có sẵn cho endpoint /item_summary/search:

- q (string): Từ khóa tìm kiếm.
- gtin (string): Tìm kiếm theo Global Trade Item Number (GTIN).
- charity_ids (array of string): Lọc theo ID tổ chức từ thiện.
- fieldgroups (array of string): Kiểm soát các nhóm trường trả về.
- compatibility_filter (CompatibilityFilter): Lọc theo thuộc tính tương thích sản phẩm.
- auto_correct (array of string): Bật tự động sửa lỗi từ khóa (giá trị: KEYWORD).
- category_ids (array of string): Lọc theo ID danh mục.
- filter (array of string): Mảng các bộ lọc trường để giới hạn/tùy chỉnh tập kết quả. Mỗi bộ lọc có định dạng 'tên_bộ_lọc:giá_trị'. Có thể sử dụng nhiều bộ lọc bằng cách thêm các chuỗi vào mảng.
Ví dụ:
- Lọc theo khoảng giá từ 10 đến 50 USD: "price:[10..50]", "priceCurrency:USD"
- Lọc theo giá tối thiểu 10 USD: "price:[10]", "priceCurrency:USD"
- Lọc theo giá tối đa 50 USD: "price:[..50]", "priceCurrency:USD"
- Lọc theo tình trạng 'Mới' hoặc 'Đã sử dụng': "conditions:{NEW|USED}"
- Lọc theo ID tình trạng (ví dụ: Mới - 1000, Đã sử dụng - 3000): "conditionIds:{1000|3000}"
- Kết hợp nhiều bộ lọc (ví dụ: giá từ 10-50 USD và tình trạng Mới): ["price:[10..50]", "priceCurrency:USD", "conditions:{NEW}"]
Tham khảo thêm tại https://developer.ebay.com/api-docs/buy/static/ref-buy-browse-filters.html để biết danh sách đầy đủ các bộ lọc được hỗ trợ.
- sort (array of SortField): Tiêu chí sắp xếp kết quả.
- limit (string): Số lượng item trên mỗi trang.
- offset (string): Số lượng item bỏ qua.
- aspect_filter (AspectFilter): Lọc theo các khía cạnh của item.
- epid (string): Lọc theo eBay product ID.

Phân tích email sau và chỉ trả về một đối tượng JSON chứa các cặp key-value là tên tham số và giá trị tương ứng.
Chỉ bao gồm các tham số thực sự cần thiết dựa trên yêu cầu của khách hàng trong email.
Nếu không có yêu cầu cụ thể nào ngoài từ khóa sản phẩm, chỉ cần cung cấp tham số 'q'.
Đảm bảo giá trị của các tham số tuân thủ đúng định dạng được mô tả.
Ví dụ về định dạng JSON đầu ra:
{
  "q": "tên sản phẩm",
  "filter": ["price:[10..100]", "conditions:{1000}"],
  "sort": ["-price"],
  "limit": "50"
}
Nếu không xác định được tham số nào ngoài từ khóa, chỉ trả về:
{
  "q": "từ khóa sản phẩm chính"
}
Nếu không xác định được từ khóa sản phẩm, trả về JSON rỗng:
{}

Nội dung Email:
---
%s
---

Đối tượng JSON tham số tìm kiếm eBay:`,

	driven.PromptEvaluate: `Dựa vào nội dung email gốc của khách hàng và thông tin về các sản phẩm liên quan được tìm thấy trên eBay, hãy đánh giá xem thông tin về các sản phẩm này có đủ và liên quan để trả lời đầy đủ câu hỏi hoặc vấn đề của khách hàng hay không.

Nội dung Email gốc:
---
%s
---

Thông tin về các sản phẩm liên quan được tìm thấy trên eBay:
---
%s
---

Đánh giá: Thông tin về các sản phẩm eBay được tìm thấy có đủ và liên quan để trả lời email gốc không? Trả lời 'CÓ' hoặc 'KHÔNG', kèm theo giải thích ngắn gọn.
Đánh giá:`,

	driven.PromptReply: `Bạn là trợ lý hỗ trợ khách hàng thân thiện và lịch sự.
Một khách hàng đã gửi email sau:
Tiêu đề: %s
Nội dung:
---
%s
---

Dựa *chỉ* vào phần 'Các sản phẩm liên quan được tìm thấy trên eBay' bên dưới, hãy soạn một email trả lời hữu ích và ngắn gọn cho khách hàng.
- Giải quyết câu hỏi hoặc vấn đề của khách hàng dựa trên email của họ.
- Sử dụng thông tin về các sản phẩm eBay đã cung cấp để trả lời thắc mắc.
- Đối với mỗi sản phẩm liên quan được liệt kê trong phần ngữ cảnh, hãy bao gồm Tiêu đề, Giá và Link sản phẩm.
- Nếu thông tin sản phẩm có liên quan nhưng chưa đầy đủ, hãy ghi nhận điều này.
- KHÔNG được tạo ra thông tin không có trong ngữ cảnh.
- KHÔNG được trích dẫn trực tiếp từ các đoạn ngữ cảnh (ví dụ: không nói "Theo Sản phẩm 1..."). Hãy tổng hợp thông tin.
- Nếu thông tin sản phẩm không liên quan, hãy lịch sự nói rằng bạn không tìm thấy sản phẩm phù hợp và đội ngũ sẽ xem xét yêu cầu.
- Giữ giọng điệu chuyên nghiệp và thân thiện. Bắt đầu bằng lời chào lịch sự (ví dụ: "Kính gửi quý khách," hoặc "Xin chào,") và kết thúc phù hợp (ví dụ: "Trân trọng," hoặc "Thân mến,").
- KHÔNG đưa email gốc của khách hàng vào phần trả lời.
- Chỉ tạo *phần nội dung* của email trả lời.

Các sản phẩm liên quan được tìm thấy trên eBay:
---
%s
---

Nội dung email trả lời:`,
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.automail/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and writes default
// files. Falls back to the embedded default when the file is missing.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch invalidates the cache when a prompt file changes, so edits
// take effect on the next email without a restart. Blocks until ctx is
// cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Info("prompt %s changed, reloading", filepath.Base(event.Name))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher error: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
